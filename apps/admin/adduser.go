package main

import (
	"context"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/church"
	"github.com/shepherdcrm/shepherd/core/user"
)

// addUser updates or creates a user.User. `-admin` makes a platform admin;
// `-church SLUG` makes a ministry admin of that church.
func (cli *commandLine) addUser(uname, email, pwd, churchSlug string, isAdmin bool) error {
	var usr user.User
	var err error
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{uname, email}}); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username: uname,
			Email:    email,
		}
	}
	if isAdmin {
		usr.Roles = user.AdminRoles
		usr.ChurchID = ""
	} else {
		ch, err := cli.churchRepo.GetChurch(ctx, church.GetFilter{Slug: churchSlug})
		if err != nil {
			return err
		}
		usr.Roles = user.MinistryRoles
		usr.ChurchID = ch.ID
	}
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
