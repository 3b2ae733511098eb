//go:build wireinject
// +build wireinject

package wire_container

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/wire"

	echoapi "github.com/shepherdcrm/shepherd/apps/api/echo"
	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/storage/database"
)

var appSet = wire.NewSet(
	core.NewConfig,
	newLogger,
	newDB,
	newCoreDB,
	newEmailService,
	newUserRepository,
	newChurchRepository,
	newPersonRepository,
	newJournalRepository,
	newPrayerRepository,
	newUserService,
	newChurchService,
	newPersonService,
	newJournalService,
	newPrayerService,
	validator.New,
	newTranslator,
	wire.Struct(new(echoapi.ServerDeps), "*"),
	echoapi.NewServer,
)

func NewConfig() *core.Config {
	wire.Build(appSet)
	return nil
}

func NewLogger() core.Logger {
	wire.Build(appSet)
	return nil
}

func NewDB() *database.DB {
	wire.Build(appSet)
	return nil
}

func NewValidate() *validator.Validate {
	wire.Build(appSet)
	return nil
}

func NewTranslator() ut.Translator {
	wire.Build(appSet)
	return nil
}

func NewServer() echoapi.Server {
	wire.Build(appSet)
	return nil
}
