package main

import (
	"context"
	"expvar"
	"fmt"
	stdlog "log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

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

// APP_DI selects the composition root: manual wiring (default), dig or wire.
func main() {
	switch os.Getenv("APP_DI") {
	case "dig":
		startWithDig()
	case "wire":
		startWithWire()
	default:
		startManual()
	}
}

func startManual() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := newLogger(conf, "API : ")
	dbLogger := newLogger(conf, "DB : ")

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(db, sqlxrepos.NewUserRepository(db), mailSvc, conf)
	churchSvc := church.NewService(db, sqlxrepos.NewChurchRepository(db))
	prsnSvc := person.NewService(db, sqlxrepos.NewPersonRepository(db), mailSvc, conf)
	journalSvc := journal.NewService(db, sqlxrepos.NewJournalRepository(db))
	prayerSvc := prayer.NewService(db, sqlxrepos.NewPrayerRepository(db))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	church.InitValidators(validate, translator)
	person.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			ChurchSvc:  churchSvc,
			PersonSvc:  prsnSvc,
			JournalSvc: journalSvc,
			PrayerSvc:  prayerSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// newLogger picks zap for local development, rollbar everywhere else.
func newLogger(conf *core.Config, prefix string) core.Logger {
	if conf.Debug {
		logger, err := logsvc.NewZapLogger(conf)
		if err != nil {
			stdlog.Fatalf("setting up logger: %v", err)
		}
		return logger
	}
	logger := logsvc.NewRollbarLogger(
		stdlog.New(os.Stdout, prefix, stdlog.LstdFlags|stdlog.Lmicroseconds|stdlog.Lshortfile),
		conf,
	)
	logger.Enable(true)
	return logger
}

func setUpDB(conf *core.Config) (*database.DB, error) {
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

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
