package person

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shepherdcrm/shepherd/core"
)

// Sources
const (
	SourceStaff        = "staff"
	SourceRegistration = "registration" // public registration form
)

type Person struct {
	ID              string    `json:"id"`
	ChurchID        string    `json:"church_id"`
	Kind            Kind      `json:"kind"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Address         string    `json:"address,omitempty"`
	City            string    `json:"city,omitempty"`
	Gender          string    `json:"gender,omitempty"`
	Note            string    `json:"note,omitempty"`
	Source          string    `json:"source"`
	Status          Status    `json:"status"`
	AssignedToID    string    `json:"assigned_to_id,omitempty"` // leader User ID
	CreatedByID     string    `json:"created_by_id,omitempty"`  // staff User ID; empty for registrations
	InvitedBy       string    `json:"invited_by,omitempty"`     // guests
	ConvertedAt     time.Time `json:"converted_at"`             // UTC; converts
	VisitedAt       time.Time `json:"visited_at"`               // UTC; guests
	JoinedAt        time.Time `json:"joined_at"`                // UTC; members & new members
	NextFollowUpAt  time.Time `json:"next_follow_up_at"`        // UTC
	LastContactedAt time.Time `json:"last_contacted_at"`        // UTC
	CreatedAt       time.Time `json:"created_at"`               // UTC
	UpdatedAt       time.Time `json:"updated_at"`               // UTC
}

func (p *Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Checkin records one follow-up contact attempt with a person.
type Checkin struct {
	ID             string    `json:"id"`
	ChurchID       string    `json:"church_id"`
	PersonID       string    `json:"person_id"`
	CreatedByID    string    `json:"created_by_id"` // who made the contact
	Outcome        Outcome   `json:"outcome"`
	Note           string    `json:"note,omitempty"`
	HappenedAt     time.Time `json:"happened_at"`       // UTC
	NextFollowUpAt time.Time `json:"next_follow_up_at"` // UTC
	CreatedAt      time.Time `json:"created_at"`        // UTC
}

// NewPerson contains information needed to add a person to a follow-up
// pipeline. Kind, ChurchID and CreatedByID come from the route and claims,
// never from the payload.
type NewPerson struct {
	FirstName    string    `json:"first_name" validate:"required"`
	LastName     string    `json:"last_name" validate:"required"`
	Email        string    `json:"email" validate:"omitempty,email"`
	Phone        string    `json:"phone" validate:"omitempty,phone_"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	Gender       string    `json:"gender" validate:"omitempty,oneof=male female"`
	Note         string    `json:"note"`
	AssignedToID string    `json:"assigned_to_id"`
	InvitedBy    string    `json:"invited_by"`
	ConvertedAt  time.Time `json:"converted_at"`
	VisitedAt    time.Time `json:"visited_at"`
	JoinedAt     time.Time `json:"joined_at"`
	Kind         Kind      `json:"-"`
	ChurchID     string    `json:"-"`
	CreatedByID  string    `json:"-"`
}

func (np *NewPerson) Validate(ctx context.Context, validate *validator.Validate) error {
	np.FirstName = core.CleanString(np.FirstName)
	np.LastName = core.CleanString(np.LastName)
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.Phone = core.CleanString(np.Phone)
	np.Address = core.CleanString(np.Address)
	np.City = core.CleanString(np.City)
	np.Gender = core.CleanString(np.Gender, true /* lower */)
	np.Note = core.SanitizeText(np.Note)
	np.InvitedBy = core.CleanString(np.InvitedBy)
	return validate.Struct(np)
}

// UpdatePerson defines what information may be provided to modify an existing Person.
type UpdatePerson struct {
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email" validate:"omitempty,email"`
	Phone        string    `json:"phone" validate:"omitempty,phone_"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	Gender       string    `json:"gender" validate:"omitempty,oneof=male female"`
	Note         string    `json:"note"`
	AssignedToID string    `json:"assigned_to_id"`
	InvitedBy    string    `json:"invited_by"`
	ConvertedAt  time.Time `json:"converted_at"`
	VisitedAt    time.Time `json:"visited_at"`
	JoinedAt     time.Time `json:"joined_at"`
}

func (up *UpdatePerson) Validate(ctx context.Context, origPrsn Person, validate *validator.Validate) error {
	firstName := core.CleanString(up.FirstName)
	if firstName != "" {
		up.FirstName = firstName
	} else {
		up.FirstName = origPrsn.FirstName
	}

	lastName := core.CleanString(up.LastName)
	if lastName != "" {
		up.LastName = lastName
	} else {
		up.LastName = origPrsn.LastName
	}

	up.Email = core.CleanString(up.Email, true /* lower */)
	up.Phone = core.CleanString(up.Phone)
	up.Address = core.CleanString(up.Address)
	up.City = core.CleanString(up.City)
	up.Gender = core.CleanString(up.Gender, true /* lower */)
	up.Note = core.SanitizeText(up.Note)
	up.InvitedBy = core.CleanString(up.InvitedBy)
	return validate.Struct(up)
}

// NewCheckin contains information needed to record a follow-up check-in.
// HappenedAt defaults to now. Setting NextFollowUpAt schedules the next
// contact and moves the person back to SCHEDULED; it must lie in the future.
type NewCheckin struct {
	Outcome        Outcome   `json:"outcome" validate:"required,outcome_"`
	Note           string    `json:"note"`
	HappenedAt     time.Time `json:"happened_at"`
	NextFollowUpAt time.Time `json:"next_follow_up_at" validate:"omitempty,gt"`
}

func (nc *NewCheckin) Validate(validate *validator.Validate) error {
	nc.Note = core.SanitizeText(nc.Note)
	return validate.Struct(nc)
}

// UpdatePersonStatus moves a person to another pipeline status by hand
// (archive, restore, schedule...). The change must be a valid transition.
type UpdatePersonStatus struct {
	Status Status `json:"status" validate:"required,status_"`
}

func (us *UpdatePersonStatus) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

// AssignPerson hands a person over to a leader for follow-up.
type AssignPerson struct {
	AssignedToID string `json:"assigned_to_id" validate:"required"`
}

func (ap *AssignPerson) Validate(validate *validator.Validate) error {
	ap.AssignedToID = core.CleanString(ap.AssignedToID)
	return validate.Struct(ap)
}

// Registration is the public form a visitor or new convert fills in
// themselves. No authentication involved.
type Registration struct {
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,phone_"`
	City         string `json:"city"`
	Note         string `json:"note"`
	IsNewConvert bool   `json:"is_new_convert"`
}

func (r *Registration) Validate(validate *validator.Validate) error {
	r.FirstName = core.SanitizeText(r.FirstName)
	r.LastName = core.SanitizeText(r.LastName)
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.Phone = core.CleanString(r.Phone)
	r.City = core.SanitizeText(r.City)
	r.Note = core.SanitizeText(r.Note)
	return validate.Struct(r)
}

type GetFilter struct {
	ID       string
	ChurchID string // scopes the lookup to a tenant when set
}

type QueryFilter struct {
	Search       string    `query:"search"`
	Statuses     []Status  `query:"status"`
	AssignedToID string    `query:"assigned_to"`
	CreatedFrom  time.Time `query:"created_from"`
	CreatedTo    time.Time `query:"created_to"`
	FollowUpFrom time.Time `query:"follow_up_from"`
	FollowUpTo   time.Time `query:"follow_up_to"`
	Kind         Kind      `query:"-"` // from the route
	ChurchID     string    `query:"-"` // enforced from claims, never bound
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Statuses == nil && qf.AssignedToID == "" &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero() &&
		qf.FollowUpFrom.IsZero() && qf.FollowUpTo.IsZero() &&
		qf.Kind == "" && qf.ChurchID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.AssignedToID = core.CleanString(qf.AssignedToID)
}

type CheckinFilter struct {
	PersonID    string
	CreatedByID string
	ChurchID    string
}

// StatusCount is one dashboard cell: how many persons of a kind sit in a status.
type StatusCount struct {
	Kind   Kind   `json:"kind"`
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

// Overview is the dashboard summary for one church.
type Overview struct {
	Pipeline           []StatusCount `json:"pipeline"`
	CheckinsLast30Days int           `json:"checkins_last_30_days"`
	FollowUpsDue7Days  int           `json:"follow_ups_due_7_days"`
}
