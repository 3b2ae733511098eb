package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/person"
	"github.com/shepherdcrm/shepherd/core/user"
)

var (
	errPrsnNotFoundInCtx = errors.New("person object not found in echo.Context")
	errKindNotFoundInCtx = errors.New("person kind not found in echo.Context")
)

const contextKindKey = "kind"

// kindRoutes maps each follow-up pipeline to its own collection; an unknown
// kind never routes.
var kindRoutes = []struct {
	path string
	kind person.Kind
}{
	{"/converts", person.KindConvert},
	{"/new-members", person.KindNewMember},
	{"/members", person.KindMember},
	{"/guests", person.KindGuest},
}

type personApi struct {
	svc        person.Service
	userSvc    user.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerPersonAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc person.Service,
	userSvc user.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := personApi{
		svc:        svc,
		userSvc:    userSvc,
		validate:   validate,
		translator: translator,
	}

	for _, kr := range kindRoutes {
		kg := g.Group(kr.path, jwt, staffMiddleware(), kindMiddleware(kr.kind))
		kg.POST("", api.create)
		kg.GET("", api.query)

		// detail endpoints
		dg := kg.Group("/:id", api.ctxPersonMiddleware)
		dg.GET("", api.retrieve)
		dg.PUT("", api.update)
		dg.DELETE("", api.destroy, ministryMiddleware())
		dg.PUT("/status", api.updateStatus)
		dg.PUT("/assign", api.assign, ministryMiddleware())
		dg.POST("/checkins", api.createCheckin)
		dg.GET("/checkins", api.queryCheckins)
		if kr.kind == person.KindMember {
			dg.POST("/portal-invite", api.invitePortal, ministryMiddleware())
		}
	}
}

// Handlers

func (api *personApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	kind, err := getContextKind(ctx)
	if err != nil {
		return err
	}

	data := new(person.NewPerson)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	data.Kind = kind
	data.ChurchID = claims.ChurchID
	data.CreatedByID = claims.Subject
	if claims.IsAdmin {
		data.ChurchID = ctx.QueryParam("church")
	}
	if data.ChurchID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "church", Error: "church is required"})
	}
	if claims.LeaderOnly() {
		// leaders follow up what they bring in themselves
		data.AssignedToID = claims.Subject
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	prsn, err := api.svc.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, prsn)
}

func (api *personApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	kind, err := getContextKind(ctx)
	if err != nil {
		return err
	}

	filter := new(person.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	filter.Clean()
	filter.Kind = kind
	filter.ChurchID = claims.ChurchID
	if claims.IsAdmin {
		filter.ChurchID = ctx.QueryParam("church")
	}
	if claims.LeaderOnly() {
		filter.AssignedToID = claims.Subject
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	persons, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return err
	}
	if persons == nil {
		persons = []person.Person{}
	}
	return ctx.JSON(http.StatusOK, persons)
}

func (api *personApi) retrieve(ctx echo.Context) error {
	prsn, ok := ctx.Get("object").(person.Person)
	if !ok {
		return errPrsnNotFoundInCtx
	}
	return ctx.JSON(http.StatusOK, prsn)
}

func (api *personApi) update(ctx echo.Context) error {
	prsn, ok := ctx.Get("object").(person.Person)
	if !ok {
		return errPrsnNotFoundInCtx
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	data := new(person.UpdatePerson)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if claims.LeaderOnly() && data.AssignedToID != "" && data.AssignedToID != prsn.AssignedToID {
		// reassignment goes through the assign endpoint, ministry admins only
		return errHttpForbidden
	}
	if err := data.Validate(ctx.Request().Context(), prsn, api.validate); err != nil {
		return err
	}

	upPrsn, err := api.svc.Update(ctx.Request().Context(), prsn.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, upPrsn)
}

func (api *personApi) updateStatus(ctx echo.Context) error {
	prsn, ok := ctx.Get("object").(person.Person)
	if !ok {
		return errPrsnNotFoundInCtx
	}

	data := new(person.UpdatePersonStatus)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	upPrsn, err := api.svc.UpdateStatus(ctx.Request().Context(), prsn, data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, upPrsn)
}

func (api *personApi) assign(ctx echo.Context) error {
	prsn, ok := ctx.Get("object").(person.Person)
	if !ok {
		return errPrsnNotFoundInCtx
	}

	data := new(person.AssignPerson)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	leader, err := api.userSvc.GetByID(ctx.Request().Context(), data.AssignedToID)
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return err
	}
	if err != nil || leader.ChurchID != prsn.ChurchID || !leader.IsStaff() {
		return core.NewValidationError(nil, core.FieldError{Field: "assigned_to_id", Error: "unknown leader"})
	}

	upPrsn, err := api.svc.Assign(ctx.Request().Context(), prsn, data.AssignedToID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, upPrsn)
}

func (api *personApi) destroy(ctx echo.Context) error {
	prsn, ok := ctx.Get("object").(person.Person)
	if !ok {
		return errPrsnNotFoundInCtx
	}

	if err := api.svc.Delete(ctx.Request().Context(), prsn.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *personApi) createCheckin(ctx echo.Context) error {
	prsn, ok := ctx.Get("object").(person.Person)
	if !ok {
		return errPrsnNotFoundInCtx
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	data := new(person.NewCheckin)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	chk, upPrsn, err := api.svc.Checkin(ctx.Request().Context(), prsn, *data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, CheckinResponse{Checkin: chk, Person: upPrsn})
}

func (api *personApi) queryCheckins(ctx echo.Context) error {
	prsn, ok := ctx.Get("object").(person.Person)
	if !ok {
		return errPrsnNotFoundInCtx
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	checkins, err := api.svc.QueryCheckins(ctx.Request().Context(), person.CheckinFilter{PersonID: prsn.ID}, ordering.Orderings)
	if err != nil {
		return err
	}
	if checkins == nil {
		checkins = []person.Checkin{}
	}
	return ctx.JSON(http.StatusOK, checkins)
}

// invitePortal opens the member self-service portal to a church member.
func (api *personApi) invitePortal(ctx echo.Context) error {
	prsn, ok := ctx.Get("object").(person.Person)
	if !ok {
		return errPrsnNotFoundInCtx
	}

	data := new(user.InvitePortalUser)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	data.PersonID = prsn.ID
	data.ChurchID = prsn.ChurchID
	if data.Name == "" {
		data.Name = prsn.FullName()
	}
	if data.Email == "" {
		data.Email = prsn.Email
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.userSvc); err != nil {
		return err
	}

	usr, err := api.userSvc.Invite(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

// Middleware

func kindMiddleware(kind person.Kind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(contextKindKey, kind)
			return next(ctx)
		}
	}
}

func getContextKind(ctx echo.Context) (person.Kind, error) {
	if kind, ok := ctx.Get(contextKindKey).(person.Kind); ok {
		return kind, nil
	}
	return "", errKindNotFoundInCtx
}

// ctxPersonMiddleware loads the requested person into the context. The person
// must belong to the collection's pipeline and to the caller's church; leaders
// only reach the people assigned to them. Anything else 404s.
func (api *personApi) ctxPersonMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		kind, err := getContextKind(ctx)
		if err != nil {
			return err
		}

		filter := person.GetFilter{ID: ctx.Param("id")}
		if !claims.IsAdmin {
			filter.ChurchID = claims.ChurchID
		}
		prsn, err := api.svc.Get(ctx.Request().Context(), filter)
		if err != nil {
			if errors.Cause(err) == person.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		if prsn.Kind != kind {
			return errHttpNotFound
		}
		if claims.LeaderOnly() && prsn.AssignedToID != claims.Subject {
			return errHttpNotFound
		}

		ctx.Set("object", prsn)
		return next(ctx)
	}
}

type CheckinResponse struct {
	Checkin person.Checkin `json:"checkin"`
	Person  person.Person  `json:"person"`
}
