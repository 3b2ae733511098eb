package wire_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/church"
	"github.com/shepherdcrm/shepherd/core/journal"
	"github.com/shepherdcrm/shepherd/core/person"
	"github.com/shepherdcrm/shepherd/core/prayer"
	"github.com/shepherdcrm/shepherd/core/user"
	emailsvc "github.com/shepherdcrm/shepherd/services/email"
	logsvc "github.com/shepherdcrm/shepherd/services/logger"
	"github.com/shepherdcrm/shepherd/storage/database"
	sqlxrepos "github.com/shepherdcrm/shepherd/storage/database/sqlx"
)

func newLogger(conf *core.Config) core.Logger {
	if conf.Debug {
		logger, err := logsvc.NewZapLogger(conf)
		if err != nil {
			log.Fatalf("setting up logger: %v", err)
		}
		return logger
	}
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(true)
	return logger
}

func newDB(conf *core.Config, logger core.Logger) *database.DB {
	setUp := func() (*database.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newCoreDB(db *database.DB) core.DB {
	return db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newUserRepository(db *database.DB) user.Repository {
	return sqlxrepos.NewUserRepository(db)
}

func newChurchRepository(db *database.DB) church.Repository {
	return sqlxrepos.NewChurchRepository(db)
}

func newPersonRepository(db *database.DB) person.Repository {
	return sqlxrepos.NewPersonRepository(db)
}

func newJournalRepository(db *database.DB) journal.Repository {
	return sqlxrepos.NewJournalRepository(db)
}

func newPrayerRepository(db *database.DB) prayer.Repository {
	return sqlxrepos.NewPrayerRepository(db)
}

func newUserService(db core.DB, repo user.Repository, mailSvc core.EmailService, conf *core.Config) user.Service {
	return user.NewService(db, repo, mailSvc, conf)
}

func newChurchService(db core.DB, repo church.Repository) church.Service {
	return church.NewService(db, repo)
}

func newPersonService(db core.DB, repo person.Repository, mailSvc core.EmailService, conf *core.Config) person.Service {
	return person.NewService(db, repo, mailSvc, conf)
}

func newJournalService(db core.DB, repo journal.Repository) journal.Service {
	return journal.NewService(db, repo)
}

func newPrayerService(db core.DB, repo prayer.Repository) prayer.Service {
	return prayer.NewService(db, repo)
}
