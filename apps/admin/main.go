package main

import (
	"log"
	"os"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/storage/database"
	sqlxrepos "github.com/shepherdcrm/shepherd/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// start CLI
	cli := commandLine{
		sqlDB:      db.DB.DB,
		churchRepo: sqlxrepos.NewChurchRepository(db),
		usrRepo:    sqlxrepos.NewUserRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
