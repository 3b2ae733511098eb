package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shepherdcrm/shepherd/core/prayer"
)

var errPrayerNotFoundInCtx = errors.New("prayer request object not found in echo.Context")

type prayerApi struct {
	svc prayer.Service
}

func registerPrayerAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc prayer.Service) {
	api := prayerApi{svc: svc}

	pg := g.Group("/prayers", jwt, staffMiddleware())
	pg.GET("", api.query)

	dg := pg.Group("/:id", api.ctxPrayerMiddleware)
	dg.PUT("/answered", api.markAnswered)
}

// Handlers

func (api *prayerApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	filter := new(prayer.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	filter.Clean()
	filter.ChurchID = claims.ChurchID
	if claims.IsAdmin {
		filter.ChurchID = ctx.QueryParam("church")
	}
	if claims.LeaderOnly() {
		// private requests stay between the member and the ministry admins
		filter.ExcludePrivate = true
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	requests, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return err
	}
	if requests == nil {
		requests = []prayer.Request{}
	}
	return ctx.JSON(http.StatusOK, requests)
}

func (api *prayerApi) markAnswered(ctx echo.Context) error {
	req, ok := ctx.Get("object").(prayer.Request)
	if !ok {
		return errPrayerNotFoundInCtx
	}

	upReq, err := api.svc.MarkAnswered(ctx.Request().Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, upReq)
}

// Middleware

// ctxPrayerMiddleware loads the requested prayer request into the context,
// scoped to the caller's church. Leaders never reach private requests.
func (api *prayerApi) ctxPrayerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}

		filter := prayer.GetFilter{ID: ctx.Param("id")}
		if !claims.IsAdmin {
			filter.ChurchID = claims.ChurchID
		}
		req, err := api.svc.Get(ctx.Request().Context(), filter)
		if err != nil {
			if errors.Cause(err) == prayer.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		if claims.LeaderOnly() && req.IsPrivate {
			return errHttpNotFound
		}

		ctx.Set("object", req)
		return next(ctx)
	}
}
