package person

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/shepherdcrm/shepherd/core"
)

var (
	// errors
	ErrNotFound          = errors.New("person not found")
	ErrInvalidTransition = errors.New("invalid status change")
)

type (
	Repository interface {
		CreatePerson(ctx context.Context, prsn Person, exec ...core.DBExecutor) (Person, error)
		GetPerson(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Person, error)
		// QueryPersons applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Person.FirstName,
		// Person.LastName, Person.Email or Person.Phone.
		QueryPersons(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Person, error)
		UpdatePerson(ctx context.Context, prsn Person, exec ...core.DBExecutor) (Person, error)
		DeletePersonsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)

		CreateCheckin(ctx context.Context, chk Checkin, exec ...core.DBExecutor) (Checkin, error)
		QueryCheckins(ctx context.Context, filter CheckinFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Checkin, error)

		CountByKindAndStatus(ctx context.Context, churchID string, exec ...core.DBExecutor) ([]StatusCount, error)
		CountCheckinsSince(ctx context.Context, churchID string, since time.Time, exec ...core.DBExecutor) (int, error)
		CountFollowUpsDue(ctx context.Context, churchID string, from, until time.Time, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, np NewPerson) (Person, error)
		Register(ctx context.Context, churchID string, reg Registration) (Person, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Person, error)
		Get(ctx context.Context, filter GetFilter) (Person, error)
		Update(ctx context.Context, id string, up UpdatePerson) (Person, error)
		UpdateStatus(ctx context.Context, prsn Person, status Status) (Person, error)
		Assign(ctx context.Context, prsn Person, leaderID string) (Person, error)
		Checkin(ctx context.Context, prsn Person, nc NewCheckin, byUserID string) (Checkin, Person, error)
		QueryCheckins(ctx context.Context, filter CheckinFilter, ordering []core.DBOrdering) ([]Checkin, error)
		Stats(ctx context.Context, churchID string) (Overview, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		db      core.DB
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, mailSvc core.EmailService, conf *core.Config) *service {
	return &service{
		db:      db,
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) Create(ctx context.Context, np NewPerson) (Person, error) {
	now := time.Now().UTC()
	prsn := Person{
		ChurchID:     np.ChurchID,
		Kind:         np.Kind,
		FirstName:    np.FirstName,
		LastName:     np.LastName,
		Email:        np.Email,
		Phone:        np.Phone,
		Address:      np.Address,
		City:         np.City,
		Gender:       np.Gender,
		Note:         np.Note,
		AssignedToID: np.AssignedToID,
		CreatedByID:  np.CreatedByID,
		InvitedBy:    np.InvitedBy,
		ConvertedAt:  np.ConvertedAt.UTC(),
		VisitedAt:    np.VisitedAt.UTC(),
		JoinedAt:     np.JoinedAt.UTC(),
		Source:       SourceStaff,
		Status:       StatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreatePerson(ctx, prsn)
}

// Register handles the public registration form. The person lands in the
// CONVERT or GUEST pipeline with a NEW status, waiting to be assigned.
func (svc *service) Register(ctx context.Context, churchID string, reg Registration) (Person, error) {
	prsn, err := svc.createRegistered(ctx, churchID, reg)
	if err != nil {
		return Person{}, err
	}
	if prsn.Email != "" {
		go svc.sendRegistrationReceivedMail(prsn)
	}
	return prsn, nil
}

func (svc *service) createRegistered(ctx context.Context, churchID string, reg Registration) (Person, error) {
	now := time.Now().UTC()
	prsn := Person{
		ChurchID:  churchID,
		Kind:      KindGuest,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		Phone:     reg.Phone,
		City:      reg.City,
		Note:      reg.Note,
		VisitedAt: now,
		Source:    SourceRegistration,
		Status:    StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if reg.IsNewConvert {
		prsn.Kind = KindConvert
		prsn.ConvertedAt = now
		prsn.VisitedAt = time.Time{}
	}
	return svc.repo.CreatePerson(ctx, prsn)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Person, error) {
	return svc.repo.QueryPersons(ctx, filter, ordering)
}

func (svc *service) Get(ctx context.Context, filter GetFilter) (Person, error) {
	return svc.repo.GetPerson(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, up UpdatePerson) (Person, error) {
	prsn := Person{
		ID:           id,
		FirstName:    up.FirstName,
		LastName:     up.LastName,
		Email:        up.Email,
		Phone:        up.Phone,
		Address:      up.Address,
		City:         up.City,
		Gender:       up.Gender,
		Note:         up.Note,
		AssignedToID: up.AssignedToID,
		InvitedBy:    up.InvitedBy,
		ConvertedAt:  up.ConvertedAt.UTC(),
		VisitedAt:    up.VisitedAt.UTC(),
		JoinedAt:     up.JoinedAt.UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	return svc.repo.UpdatePerson(ctx, prsn)
}

func (svc *service) UpdateStatus(ctx context.Context, prsn Person, status Status) (Person, error) {
	if !CanTransition(prsn.Status, status) {
		return Person{}, core.NewValidationError(
			ErrInvalidTransition,
			core.FieldError{Field: "status", Error: ErrInvalidTransition.Error()},
		)
	}
	prsn.Status = status
	if status == StatusArchived {
		prsn.NextFollowUpAt = time.Time{}
	}
	prsn.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePerson(ctx, prsn)
}

func (svc *service) Assign(ctx context.Context, prsn Person, leaderID string) (Person, error) {
	prsn.AssignedToID = leaderID
	prsn.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePerson(ctx, prsn)
}

// Checkin records a contact attempt and moves the person along the
// pipeline, in a single transaction.
func (svc *service) Checkin(ctx context.Context, prsn Person, nc NewCheckin, byUserID string) (Checkin, Person, error) {
	now := time.Now().UTC()
	happenedAt := nc.HappenedAt.UTC()
	if happenedAt.IsZero() {
		happenedAt = now
	}
	chk := Checkin{
		ChurchID:       prsn.ChurchID,
		PersonID:       prsn.ID,
		CreatedByID:    byUserID,
		Outcome:        nc.Outcome,
		Note:           nc.Note,
		HappenedAt:     happenedAt,
		NextFollowUpAt: nc.NextFollowUpAt.UTC(),
		CreatedAt:      now,
	}

	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return Checkin{}, Person{}, errors.Wrap(err, "beginning transaction")
	}

	chk, err = svc.repo.CreateCheckin(ctx, chk, tx)
	if err != nil {
		_ = tx.Rollback()
		return Checkin{}, Person{}, err
	}

	prsn.Status = StatusAfterCheckin(nc.Outcome, !nc.NextFollowUpAt.IsZero())
	prsn.NextFollowUpAt = nc.NextFollowUpAt.UTC()
	prsn.LastContactedAt = happenedAt
	prsn.UpdatedAt = now
	prsn, err = svc.repo.UpdatePerson(ctx, prsn, tx)
	if err != nil {
		_ = tx.Rollback()
		return Checkin{}, Person{}, err
	}

	if err = tx.Commit(); err != nil {
		return Checkin{}, Person{}, errors.Wrap(err, "committing transaction")
	}
	return chk, prsn, nil
}

func (svc *service) QueryCheckins(ctx context.Context, filter CheckinFilter, ordering []core.DBOrdering) ([]Checkin, error) {
	return svc.repo.QueryCheckins(ctx, filter, ordering)
}

// Stats assembles the dashboard overview: pipeline counts, check-ins over the
// last 30 days and follow-ups coming due within a week.
func (svc *service) Stats(ctx context.Context, churchID string) (Overview, error) {
	pipeline, err := svc.repo.CountByKindAndStatus(ctx, churchID)
	if err != nil {
		return Overview{}, err
	}
	if pipeline == nil {
		pipeline = []StatusCount{}
	}

	now := time.Now().UTC()
	checkins, err := svc.repo.CountCheckinsSince(ctx, churchID, now.AddDate(0, 0, -30))
	if err != nil {
		return Overview{}, err
	}
	due, err := svc.repo.CountFollowUpsDue(ctx, churchID, now, now.AddDate(0, 0, 7))
	if err != nil {
		return Overview{}, err
	}

	return Overview{
		Pipeline:           pipeline,
		CheckinsLast30Days: checkins,
		FollowUpsDue7Days:  due,
	}, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeletePersonsByID(ctx, ids)
	return err
}

func (svc *service) sendRegistrationReceivedMail(prsn Person) {
	data := struct {
		Person Person
	}{prsn}

	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: prsn.FullName(), Address: prsn.Email}},
			Subject:      "Thanks for registering",
			TemplateName: "registration-received",
			TemplateData: data,
		},
	)
}
