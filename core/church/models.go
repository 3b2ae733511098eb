package church

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shepherdcrm/shepherd/core"
)

type Church struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	Country   string    `json:"country,omitempty"`
	IsActive  *bool     `json:"is_active"`  // deactivated churches close their public registration form
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (c *Church) SetActive(active bool) {
	c.IsActive = &active
}

func (c *Church) Active() bool {
	return c.IsActive != nil && *c.IsActive
}

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a church name into the URL-safe identifier used by
// public registration links.
func Slugify(name string) string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// NewChurch contains information needed to register a new Church.
type NewChurch struct {
	Name    string `json:"name" validate:"required"`
	Slug    string `json:"slug" validate:"omitempty,min=3,slug_"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,phone_"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func (nc *NewChurch) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Slug = core.CleanString(nc.Slug, true /* lower */)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	nc.Phone = core.CleanString(nc.Phone)
	nc.Address = core.CleanString(nc.Address)
	nc.City = core.CleanString(nc.City)
	nc.Country = core.CleanString(nc.Country)

	if nc.Slug == "" {
		nc.Slug = Slugify(nc.Name)
	}
	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nc.Slug)
}

// UpdateChurch defines what information may be provided to modify an existing Church.
type UpdateChurch struct {
	Name     string `json:"name"`
	Slug     string `json:"slug" validate:"omitempty,min=3,slug_"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,phone_"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
	IsActive *bool  `json:"is_active"`
}

func (uc *UpdateChurch) Validate(ctx context.Context, origChurch Church, validate *validator.Validate, svc Service) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = origChurch.Name
	}

	slug := core.CleanString(uc.Slug, true /* lower */)
	if slug != "" {
		uc.Slug = slug
	} else {
		uc.Slug = origChurch.Slug
	}

	uc.Email = core.CleanString(uc.Email, true /* lower */)
	uc.Phone = core.CleanString(uc.Phone)
	uc.Address = core.CleanString(uc.Address)
	uc.City = core.CleanString(uc.City)
	uc.Country = core.CleanString(uc.Country)

	if err := validate.Struct(uc); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uc.Slug, origChurch)
}

type GetFilter struct {
	ID   string
	Slug string
}

type QueryFilter struct {
	Search      string    `query:"search"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
