package user

import (
	"context"

	"github.com/shepherdcrm/shepherd/core"
)

type serviceMock struct {
	service
}

func NewServiceMock(db core.DB, repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	secretKey = conf.SecretKey
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
	return &serviceMock{
		service: service{
			db:      db,
			repo:    repo,
			mailSvc: mailSvc,
			conf:    conf,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.Active() {
		return ErrNotFound
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *serviceMock) Invite(ctx context.Context, inv InvitePortalUser) (User, error) {
	usr, err := svc.createInvitedUser(ctx, inv)
	if err != nil {
		return User{}, err
	}
	// run synchronously
	svc.sendPortalInviteMail(usr)
	return usr, nil
}
