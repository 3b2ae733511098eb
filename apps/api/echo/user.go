package echoapi

import (
	"net/http"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/user"
)

var (
	errUsrNotFoundInCtx  = errors.New("user object not found in echo.Context")
	errNoPermsToSetRoles = "not enough rights to set these roles"
)

type userApi struct {
	svc        user.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerUserAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc user.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := userApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login)
	ug.POST("/password-reset", api.resetPassword)
	ug.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("/register", api.create, ministryMiddleware())
	ag.GET("", api.query, ministryMiddleware())
	ag.DELETE("", api.destroyMultiple, ministryMiddleware())
	ag.GET("/roles", api.queryRoles, ministryMiddleware())

	// detail endpoints
	dg := ag.Group("/:id", api.ctxUserOrStaffAdminMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, ministryMiddleware())
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	data := new(LoginRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Username, data.Password, api.svc)
	if err != nil {
		return err
	}

	token, err := GenerateToken(claims)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	data := new(user.NewUser)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if !claims.IsAdmin {
		// ministry admins only manage staff of their own church
		data.ChurchID = claims.ChurchID
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	if user.MaxRolePriority(data.Roles) > user.MaxRolePriority(ctxUsr.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	usr, err := api.svc.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	filter.Clean()
	if !claims.IsAdmin {
		filter.ChurchID = claims.ChurchID
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	users, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return err
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errUsrNotFoundInCtx
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errUsrNotFoundInCtx
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	data := new(user.UpdateUser)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if !claims.IsStaff() {
		// members may only update their name and password here
		if data.IsActive != nil || data.Roles != nil || data.Username != "" || data.Email != "" {
			return errHttpForbidden
		}
	}
	if claims.Subject == usr.ID && (data.IsActive != nil || data.Roles != nil) {
		// no one edits their own privileges
		return errHttpForbidden
	}
	if err := data.Validate(ctx.Request().Context(), usr, api.validate, api.svc); err != nil {
		return err
	}

	if data.Roles != nil {
		ctxUsr, err := getContextUser(ctx, api.svc)
		if err != nil {
			return err
		}
		if user.MaxRolePriority(data.Roles) > user.MaxRolePriority(ctxUsr.Roles) {
			return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
		}
	}

	upUsr, err := api.svc.Update(ctx.Request().Context(), usr.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, upUsr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errUsrNotFoundInCtx
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if usr.ID == claims.Subject {
		return errHttpForbidden // Say No to Suicide!
	}

	if err := api.svc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) destroyMultiple(ctx echo.Context) error {
	data := new(DestroyMultipleRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	sort.Strings(data.IDs)
	if i := sort.SearchStrings(data.IDs, claims.Subject); i < len(data.IDs) && data.IDs[i] == claims.Subject {
		return errHttpForbidden // Say No to Suicide!
	}

	if !claims.IsAdmin {
		// a ministry admin may only delete accounts of their own church
		for _, id := range data.IDs {
			usr, err := api.svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					continue
				}
				return err
			}
			if usr.ChurchID != claims.ChurchID {
				return errHttpForbidden
			}
		}
	}

	if err := api.svc.Delete(ctx.Request().Context(), data.IDs...); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	data := new(PasswordResetRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// no feedback on whether the email is known
	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); err != nil {
		ctx.Logger().Errorf("%+v", err)
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in its inbox shortly with instructions to reset the password.",
	})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	data := new(user.ResetUserPassword)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), *data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

// Middleware

// ctxUserOrStaffAdminMiddleware loads the requested user into the context.
// Accounts can always access themselves; platform admins reach anyone and
// ministry admins reach accounts of their own church. Anything else 404s so
// the existence of foreign accounts is not leaked.
func (api *userApi) ctxUserOrStaffAdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}

		id := ctx.Param("id")
		if id != claims.Subject && !claims.IsAdmin && !claims.IsMinistryAdmin {
			return errHttpNotFound
		}

		usr, err := api.svc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		if id != claims.Subject && !claims.IsAdmin && usr.ChurchID != claims.ChurchID {
			return errHttpNotFound
		}

		ctx.Set("object", usr)
		return next(ctx)
	}
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
