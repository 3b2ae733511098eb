package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/shepherdcrm/shepherd/apps/api/echo"
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

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) (core.Logger, error) {
	if conf.Debug {
		return logsvc.NewZapLogger(conf)
	}
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(true)
	return logger, nil
}

func newDBLogger(conf *core.Config) (core.Logger, error) {
	if conf.Debug {
		return logsvc.NewZapLogger(conf)
	}
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(true)
	return logger, nil
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*database.DB, core.DB) {
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
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db
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

type ServerDepsParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	UserSvc    user.Service
	ChurchSvc  church.Service
	PersonSvc  person.Service
	JournalSvc journal.Service
	PrayerSvc  prayer.Service
	Validate   *validator.Validate
	Translator ut.Translator
}

func newServerDeps(p ServerDepsParams) echoapi.ServerDeps {
	return echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		UserSvc:    p.UserSvc,
		ChurchSvc:  p.ChurchSvc,
		PersonSvc:  p.PersonSvc,
		JournalSvc: p.JournalSvc,
		PrayerSvc:  p.PrayerSvc,
		Validate:   p.Validate,
		Translator: p.Translator,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(newUserRepository))
	must(c.Provide(newChurchRepository))
	must(c.Provide(newPersonRepository))
	must(c.Provide(newJournalRepository))
	must(c.Provide(newPrayerRepository))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(newUserService))
	must(c.Provide(newChurchService))
	must(c.Provide(newPersonService))
	must(c.Provide(newJournalService))
	must(c.Provide(newPrayerService))
	must(c.Provide(newServerDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
