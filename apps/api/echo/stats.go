package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/person"
	"github.com/shepherdcrm/shepherd/core/prayer"
)

type statsApi struct {
	personSvc person.Service
	prayerSvc prayer.Service
}

func registerStatsAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	personSvc person.Service,
	prayerSvc prayer.Service,
) {
	api := statsApi{
		personSvc: personSvc,
		prayerSvc: prayerSvc,
	}

	sg := g.Group("/stats", jwt, staffMiddleware())
	sg.GET("/overview", api.overview)
}

// overview feeds the staff dashboard. Platform admins pick the church with
// the `church` query param; everyone else gets their own.
func (api *statsApi) overview(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	churchID := claims.ChurchID
	if claims.IsAdmin {
		churchID = ctx.QueryParam("church")
	}
	if churchID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "church", Error: "church is required"})
	}

	overview, err := api.personSvc.Stats(ctx.Request().Context(), churchID)
	if err != nil {
		return err
	}
	openPrayers, err := api.prayerSvc.CountOpen(ctx.Request().Context(), churchID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, OverviewResponse{
		Overview:           overview,
		OpenPrayerRequests: openPrayers,
	})
}

type OverviewResponse struct {
	person.Overview
	OpenPrayerRequests int `json:"open_prayer_requests"`
}
