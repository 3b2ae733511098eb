package prayer

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shepherdcrm/shepherd/core"
)

// Request is a prayer request a member shares with the ministry team.
// Private requests stay between the member and the ministry admins.
type Request struct {
	ID         string    `json:"id"`
	ChurchID   string    `json:"church_id"`
	PersonID   string    `json:"person_id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	IsPrivate  bool      `json:"is_private"`
	AnsweredAt time.Time `json:"answered_at"` // UTC; zero until marked answered
	CreatedAt  time.Time `json:"created_at"`  // UTC
	UpdatedAt  time.Time `json:"updated_at"`  // UTC
}

func (r *Request) Answered() bool {
	return !r.AnsweredAt.IsZero()
}

// NewRequest contains information needed to share a prayer request.
type NewRequest struct {
	Subject   string `json:"subject" validate:"required"`
	Body      string `json:"body" validate:"required"`
	IsPrivate bool   `json:"is_private"`
}

func (nr *NewRequest) Validate(validate *validator.Validate) error {
	nr.Subject = core.SanitizeText(nr.Subject)
	nr.Body = core.SanitizeRichText(nr.Body)
	return validate.Struct(nr)
}

type GetFilter struct {
	ID       string
	PersonID string // scopes the lookup to the owning member when set
	ChurchID string // scopes the lookup to a tenant when set
}

type QueryFilter struct {
	Search         string    `query:"search"`
	Answered       *bool     `query:"answered"`
	CreatedFrom    time.Time `query:"created_from"`
	CreatedTo      time.Time `query:"created_to"`
	ChurchID       string    `query:"-"` // enforced from claims, never bound
	PersonID       string    `query:"-"` // enforced from claims, never bound
	ExcludePrivate bool      `query:"-"` // enforced from claims, never bound
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Answered == nil &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero() &&
		qf.ChurchID == "" && qf.PersonID == "" && !qf.ExcludePrivate
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
