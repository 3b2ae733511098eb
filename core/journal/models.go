package journal

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shepherdcrm/shepherd/core"
)

// Entry is a private journal note a member writes about their own walk.
// Entries are only ever visible to the member who wrote them.
type Entry struct {
	ID        string    `json:"id"`
	ChurchID  string    `json:"church_id"`
	PersonID  string    `json:"person_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewEntry contains information needed to write a journal entry.
type NewEntry struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

func (ne *NewEntry) Validate(validate *validator.Validate) error {
	ne.Title = core.SanitizeText(ne.Title)
	ne.Body = core.SanitizeRichText(ne.Body)
	return validate.Struct(ne)
}

// UpdateEntry defines what information may be provided to modify an existing Entry.
type UpdateEntry struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (ue *UpdateEntry) Validate(origEntry Entry, validate *validator.Validate) error {
	title := core.SanitizeText(ue.Title)
	if title != "" {
		ue.Title = title
	} else {
		ue.Title = origEntry.Title
	}

	body := core.SanitizeRichText(ue.Body)
	if body != "" {
		ue.Body = body
	} else {
		ue.Body = origEntry.Body
	}
	return validate.Struct(ue)
}

type GetFilter struct {
	ID       string
	PersonID string // scopes the lookup to the owning member when set
}

type QueryFilter struct {
	Search      string    `query:"search"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
	PersonID    string    `query:"-"` // enforced from claims, never bound
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero() && qf.PersonID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
