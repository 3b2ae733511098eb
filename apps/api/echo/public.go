package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shepherdcrm/shepherd/core/church"
	"github.com/shepherdcrm/shepherd/core/person"
	"github.com/shepherdcrm/shepherd/core/prayer"
)

// publicApi serves the unauthenticated registration form: a church shares a
// link carrying its slug, visitors and new converts register themselves.
type publicApi struct {
	churchSvc church.Service
	personSvc person.Service
	prayerSvc prayer.Service
	validate  *validator.Validate
}

func registerPublicAPI(
	g *echo.Group,
	churchSvc church.Service,
	personSvc person.Service,
	prayerSvc prayer.Service,
	validate *validator.Validate,
) {
	api := publicApi{
		churchSvc: churchSvc,
		personSvc: personSvc,
		prayerSvc: prayerSvc,
		validate:  validate,
	}

	pg := g.Group("/public/churches/:slug", api.ctxPublicChurchMiddleware)
	pg.GET("", api.retrieveChurch)
	pg.POST("/registrations", api.register)
}

// Handlers

func (api *publicApi) retrieveChurch(ctx echo.Context) error {
	ch, ok := ctx.Get("object").(church.Church)
	if !ok {
		return errChurchNotFoundInCtx
	}
	return ctx.JSON(http.StatusOK, PublicChurchResponse{Name: ch.Name})
}

func (api *publicApi) register(ctx echo.Context) error {
	ch, ok := ctx.Get("object").(church.Church)
	if !ok {
		return errChurchNotFoundInCtx
	}

	data := new(RegistrationRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Registration.Validate(api.validate); err != nil {
		return err
	}

	var nr *prayer.NewRequest
	if strings.TrimSpace(data.PrayerRequest) != "" {
		nr = &prayer.NewRequest{Subject: "Prayer request", Body: data.PrayerRequest}
		if err := nr.Validate(api.validate); err != nil {
			return err
		}
	}

	prsn, err := api.personSvc.Register(ctx.Request().Context(), ch.ID, data.Registration)
	if err != nil {
		return err
	}
	if nr != nil {
		if _, err = api.prayerSvc.Create(ctx.Request().Context(), ch.ID, prsn.ID, *nr); err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusCreated, SuccessResponse{
		Success: "Thanks for registering. Someone from the church will be in touch soon.",
	})
}

// Middleware

// ctxPublicChurchMiddleware resolves the slug to an active church. Unknown
// or deactivated churches 404; the form simply does not exist for them.
func (api *publicApi) ctxPublicChurchMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ch, err := api.churchSvc.GetBySlug(ctx.Request().Context(), ctx.Param("slug"))
		if err != nil {
			if errors.Cause(err) == church.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		if !ch.Active() {
			return errHttpNotFound
		}

		ctx.Set("object", ch)
		return next(ctx)
	}
}

type (
	PublicChurchResponse struct {
		Name string `json:"name"`
	}

	RegistrationRequest struct {
		person.Registration
		PrayerRequest string `json:"prayer_request"`
	}
)
