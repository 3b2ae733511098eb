package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/church"
	"github.com/shepherdcrm/shepherd/core/journal"
	"github.com/shepherdcrm/shepherd/core/person"
	"github.com/shepherdcrm/shepherd/core/prayer"
	"github.com/shepherdcrm/shepherd/core/user"
)

var errEntryNotFoundInCtx = errors.New("journal entry object not found in echo.Context")

// portalApi is the member self-service surface: a member account sees their
// own journey, journal and prayer requests, nothing else.
type portalApi struct {
	userSvc    user.Service
	churchSvc  church.Service
	personSvc  person.Service
	journalSvc journal.Service
	prayerSvc  prayer.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerPortalAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	userSvc user.Service,
	churchSvc church.Service,
	personSvc person.Service,
	journalSvc journal.Service,
	prayerSvc prayer.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := portalApi{
		userSvc:    userSvc,
		churchSvc:  churchSvc,
		personSvc:  personSvc,
		journalSvc: journalSvc,
		prayerSvc:  prayerSvc,
		validate:   validate,
		translator: translator,
	}

	pg := g.Group("/portal")
	pg.POST("/login", api.login)

	// authed endpoints
	ag := pg.Group("", jwt, memberMiddleware())
	ag.GET("/me", api.me)
	ag.GET("/journey", api.journey)
	ag.GET("/journal", api.queryJournal)
	ag.POST("/journal", api.createJournalEntry)
	ag.GET("/prayers", api.queryPrayers)
	ag.POST("/prayers", api.createPrayer)
	ag.PUT("/prayers/:id/answered", api.markPrayerAnswered)
	ag.DELETE("/prayers/:id", api.destroyPrayer)

	jg := ag.Group("/journal/:id", api.ctxEntryMiddleware)
	jg.PUT("", api.updateJournalEntry)
	jg.DELETE("", api.destroyJournalEntry)
}

// Handlers

func (api *portalApi) login(ctx echo.Context) error {
	data := new(LoginRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Username, data.Password, api.userSvc)
	if err != nil {
		return err
	}
	if !claims.IsMember || claims.PersonID == "" {
		// staff accounts sign in through the staff app
		return errAuthenticationFailed
	}

	token, err := GenerateToken(claims)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *portalApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	prsn, err := api.getPerson(ctx, claims)
	if err != nil {
		return err
	}
	ch, err := api.churchSvc.GetByID(ctx.Request().Context(), claims.ChurchID)
	if err != nil {
		if errors.Cause(err) == church.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, PortalMeResponse{Person: prsn, Church: ch})
}

// journey returns the member's pipeline state with their check-in history,
// oldest first.
func (api *portalApi) journey(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	prsn, err := api.getPerson(ctx, claims)
	if err != nil {
		return err
	}
	checkins, err := api.personSvc.QueryCheckins(
		ctx.Request().Context(),
		person.CheckinFilter{PersonID: prsn.ID},
		[]core.DBOrdering{{Field: "happened_at", Ascending: true}},
	)
	if err != nil {
		return err
	}
	if checkins == nil {
		checkins = []person.Checkin{}
	}
	return ctx.JSON(http.StatusOK, PortalJourneyResponse{Person: prsn, Checkins: checkins})
}

func (api *portalApi) queryJournal(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	filter := new(journal.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	filter.Clean()
	filter.PersonID = claims.PersonID

	ordering := new(Ordering)
	ordering.Bind(ctx)

	entries, err := api.journalSvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *portalApi) createJournalEntry(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	data := new(journal.NewEntry)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	entry, err := api.journalSvc.Create(ctx.Request().Context(), claims.ChurchID, claims.PersonID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *portalApi) updateJournalEntry(ctx echo.Context) error {
	entry, ok := ctx.Get("object").(journal.Entry)
	if !ok {
		return errEntryNotFoundInCtx
	}

	data := new(journal.UpdateEntry)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(entry, api.validate); err != nil {
		return err
	}

	upEntry, err := api.journalSvc.Update(ctx.Request().Context(), entry.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, upEntry)
}

func (api *portalApi) destroyJournalEntry(ctx echo.Context) error {
	entry, ok := ctx.Get("object").(journal.Entry)
	if !ok {
		return errEntryNotFoundInCtx
	}

	if err := api.journalSvc.Delete(ctx.Request().Context(), entry.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *portalApi) queryPrayers(ctx echo.Context) error {
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
	filter.PersonID = claims.PersonID

	ordering := new(Ordering)
	ordering.Bind(ctx)

	requests, err := api.prayerSvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return err
	}
	if requests == nil {
		requests = []prayer.Request{}
	}
	return ctx.JSON(http.StatusOK, requests)
}

func (api *portalApi) createPrayer(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	data := new(prayer.NewRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	req, err := api.prayerSvc.Create(ctx.Request().Context(), claims.ChurchID, claims.PersonID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *portalApi) markPrayerAnswered(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	req, err := api.prayerSvc.Get(ctx.Request().Context(), prayer.GetFilter{
		ID:       ctx.Param("id"),
		PersonID: claims.PersonID,
	})
	if err != nil {
		if errors.Cause(err) == prayer.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}

	upReq, err := api.prayerSvc.MarkAnswered(ctx.Request().Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, upReq)
}

func (api *portalApi) destroyPrayer(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	req, err := api.prayerSvc.Get(ctx.Request().Context(), prayer.GetFilter{
		ID:       ctx.Param("id"),
		PersonID: claims.PersonID,
	})
	if err != nil {
		if errors.Cause(err) == prayer.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}

	if err := api.prayerSvc.Delete(ctx.Request().Context(), req.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getPerson resolves the member's Person record from their claims.
func (api *portalApi) getPerson(ctx echo.Context, claims Claims) (person.Person, error) {
	prsn, err := api.personSvc.Get(ctx.Request().Context(), person.GetFilter{
		ID:       claims.PersonID,
		ChurchID: claims.ChurchID,
	})
	if err != nil {
		if errors.Cause(err) == person.ErrNotFound {
			return person.Person{}, errHttpNotFound
		}
		return person.Person{}, err
	}
	return prsn, nil
}

// Middleware

// ctxEntryMiddleware loads the requested journal entry into the context.
// Entries are only ever visible to the member who wrote them.
func (api *portalApi) ctxEntryMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}

		entry, err := api.journalSvc.Get(ctx.Request().Context(), journal.GetFilter{
			ID:       ctx.Param("id"),
			PersonID: claims.PersonID,
		})
		if err != nil {
			if errors.Cause(err) == journal.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}

		ctx.Set("object", entry)
		return next(ctx)
	}
}

type (
	PortalMeResponse struct {
		Person person.Person `json:"person"`
		Church church.Church `json:"church"`
	}

	PortalJourneyResponse struct {
		Person   person.Person    `json:"person"`
		Checkins []person.Checkin `json:"checkins"`
	}
)
