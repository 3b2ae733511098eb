package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/shepherdcrm/shepherd/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Ministry Admin
	RoleMinistryAdmin = "ministry:"

	// Leader
	RoleLeader = "leader:"

	// Member (self-service portal)
	RoleMember = "member:"
)

var (
	AdminRoles    = []string{RoleAdmin, RoleAdminOwner}
	MinistryRoles = []string{RoleMinistryAdmin}
	LeaderRoles   = []string{RoleLeader}
	MemberRoles   = []string{RoleMember}
	AllRoles      = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Ministry Admins: 20 - 11
		RoleMinistryAdmin: 11,

		// Leaders: 10 - 2
		RoleLeader: 2,

		// Members: 1
		RoleMember: 1,
	}

	Roles = []Role{
		{Name: "Member", Value: RoleMember},
		{Name: "Leader", Value: RoleLeader},
		{Name: "Ministry Admin", Value: RoleMinistryAdmin},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 5)
	all = append(all, AdminRoles...)
	all = append(all, MinistryRoles...)
	all = append(all, LeaderRoles...)
	all = append(all, MemberRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id"`
	ChurchID     string    `json:"church_id,omitempty"` // empty for app admins
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     *bool     `json:"is_active"`
	Roles        []string  `json:"roles"`
	PersonID     string    `json:"person_id,omitempty"` // set for member portal accounts
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) {
	u.IsActive = &active
}

func (u *User) Active() bool {
	return u.IsActive != nil && *u.IsActive
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsMinistryAdmin() bool {
	return u.RoleStartsWith(RoleMinistryAdmin)
}

func (u *User) IsLeader() bool {
	return u.RoleStartsWith(RoleLeader)
}

func (u *User) IsMember() bool {
	return u.RoleStartsWith(RoleMember)
}

// IsStaff reports whether the user belongs to the ministry side of the app
// (as opposed to member portal accounts).
func (u *User) IsStaff() bool {
	return u.IsAdmin() || u.IsMinistryAdmin() || u.IsLeader()
}

// CheckRoleScope verifies that the granted roles agree with the tenant scope:
// staff roles require a church, platform admins must not have one and member
// accounts are linked to both a church and a person.
func CheckRoleScope(roles []string, churchID, personID string) error {
	for _, role := range roles {
		switch {
		case strings.HasPrefix(role, RoleAdmin):
			if churchID != "" {
				return core.NewValidationError(nil,
					core.FieldError{Field: "roles", Error: "platform admins cannot belong to a church"})
			}
		case strings.HasPrefix(role, RoleMinistryAdmin), strings.HasPrefix(role, RoleLeader):
			if churchID == "" {
				return core.NewValidationError(nil,
					core.FieldError{Field: "roles", Error: "staff roles require a church"})
			}
		case strings.HasPrefix(role, RoleMember):
			if churchID == "" || personID == "" {
				return core.NewValidationError(nil,
					core.FieldError{Field: "roles", Error: "member accounts require a church and a person"})
			}
		}
	}
	return nil
}

// NewUser contains information needed to create a new User.
// ChurchID is only honored for platform admins; other creators are locked to
// their own church by the API layer.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	ChurchID        string   `json:"church_id"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	if err := CheckRoleScope(nu.Roles, nu.ChurchID, ""); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string   `json:"name"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc Service) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	uname := core.CleanString(uu.Username, true /* lower */)
	if uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	if uu.Roles != nil {
		if err := CheckRoleScope(uu.Roles, origUsr.ChurchID, origUsr.PersonID); err != nil {
			return err
		}
	}
	return svc.CheckUniqueness(ctx, uu.Username, uu.Email, origUsr)
}

// InvitePortalUser contains information needed to invite a church member
// to the self-service portal. The invited account is created without a
// usable password; the member sets one via the emailed link.
type InvitePortalUser struct {
	PersonID string `json:"-" validate:"required"`
	ChurchID string `json:"-" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

func (inv *InvitePortalUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	inv.Name = core.CleanString(inv.Name)
	inv.Email = core.CleanString(inv.Email, true /* lower */)

	if err := validate.Struct(inv); err != nil {
		return err
	}
	if _, err := svc.GetByPersonID(ctx, inv.PersonID); err == nil {
		return core.NewValidationError(nil,
			core.FieldError{Field: "person", Error: "this person already has a portal account"})
	} else if err != ErrNotFound {
		return err
	}
	return svc.CheckUniqueness(ctx, "", inv.Email)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail []string
	PersonID        string
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
	ChurchID    string    `query:"-"` // enforced from claims, never bound
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero() && qf.ChurchID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
