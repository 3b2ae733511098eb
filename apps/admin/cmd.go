package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/shepherdcrm/shepherd/core/church"
	"github.com/shepherdcrm/shepherd/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	sqlDB      *sql.DB // goose runs against the raw connection
	churchRepo church.Repository
	usrRepo    user.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  addchurch -name NAME [-slug SLUG] - register a church")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-church SLUG] [-admin] - create or update a staff account")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addChurchCmd := flag.NewFlagSet("addchurch", flag.ExitOnError)
	addChurchName := addChurchCmd.String("name", "", "The church's name.")
	addChurchSlug := addChurchCmd.String("slug", "", "The slug used in the public registration link. Derived from the name when omitted.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserChurch := addUserCmd.String("church", "", "Slug of the church the user administers. Makes a ministry admin.")
	addUserIsAdmin := addUserCmd.Bool("admin", false, "Make the user a platform admin. Incompatible with -church.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addchurch":
		if err := addChurchCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addChurchName == "" {
			addChurchCmd.Usage()
			return errHelp
		}
		return cli.addChurch(*addChurchName, *addChurchSlug)
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		if *addUserIsAdmin == (*addUserChurch != "") { // exactly one of -admin, -church
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, string(pwd), *addUserChurch, *addUserIsAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}
