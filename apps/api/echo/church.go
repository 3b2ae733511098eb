package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shepherdcrm/shepherd/core/church"
)

var errChurchNotFoundInCtx = errors.New("church object not found in echo.Context")

type churchApi struct {
	svc        church.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerChurchAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc church.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := churchApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	cg := g.Group("/churches", jwt)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("", api.query, adminMiddleware())
	cg.DELETE("", api.destroyMultiple, adminMiddleware())
	cg.GET("/mine", api.retrieveMine, staffMiddleware())

	// detail endpoints
	dg := cg.Group("/:id", api.ctxChurchMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *churchApi) create(ctx echo.Context) error {
	data := new(church.NewChurch)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	ch, err := api.svc.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ch)
}

func (api *churchApi) query(ctx echo.Context) error {
	filter := new(church.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	filter.Clean()

	ordering := new(Ordering)
	ordering.Bind(ctx)

	churches, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return err
	}
	if churches == nil {
		churches = []church.Church{}
	}
	return ctx.JSON(http.StatusOK, churches)
}

// retrieveMine returns the church of the authenticated staff user.
func (api *churchApi) retrieveMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if claims.ChurchID == "" {
		return errHttpNotFound // platform admins belong to no church
	}

	ch, err := api.svc.GetByID(ctx.Request().Context(), claims.ChurchID)
	if err != nil {
		if errors.Cause(err) == church.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, ch)
}

func (api *churchApi) retrieve(ctx echo.Context) error {
	ch, ok := ctx.Get("object").(church.Church)
	if !ok {
		return errChurchNotFoundInCtx
	}
	return ctx.JSON(http.StatusOK, ch)
}

func (api *churchApi) update(ctx echo.Context) error {
	ch, ok := ctx.Get("object").(church.Church)
	if !ok {
		return errChurchNotFoundInCtx
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	data := new(church.UpdateChurch)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if !claims.IsAdmin {
		// ministry admins keep their church profile current; slug and
		// activation stay with the platform
		if data.Slug != "" || data.IsActive != nil {
			return errHttpForbidden
		}
	}
	if err := data.Validate(ctx.Request().Context(), ch, api.validate, api.svc); err != nil {
		return err
	}

	upCh, err := api.svc.Update(ctx.Request().Context(), ch.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, upCh)
}

func (api *churchApi) destroy(ctx echo.Context) error {
	ch, ok := ctx.Get("object").(church.Church)
	if !ok {
		return errChurchNotFoundInCtx
	}

	if err := api.svc.Delete(ctx.Request().Context(), ch.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *churchApi) destroyMultiple(ctx echo.Context) error {
	data := new(DestroyMultipleRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), data.IDs...); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Middleware

// ctxChurchMiddleware loads the requested church into the context. Platform
// admins reach any church; ministry admins only their own. Anything else 404s.
func (api *churchApi) ctxChurchMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}

		id := ctx.Param("id")
		if !claims.IsAdmin && !(claims.IsMinistryAdmin && claims.ChurchID == id) {
			return errHttpNotFound
		}

		ch, err := api.svc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			if errors.Cause(err) == church.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}

		ctx.Set("object", ch)
		return next(ctx)
	}
}
