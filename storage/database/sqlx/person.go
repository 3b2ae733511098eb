package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/person"
)

const (
	personTable  = "person"
	checkinTable = "checkin"
)

var (
	personColumns = []string{
		"id", "church_id", "kind", "first_name", "last_name", "email", "phone",
		"address", "city", "gender", "note", "source", "status", "assigned_to_id",
		"created_by_id", "invited_by", "converted_at", "visited_at", "joined_at",
		"next_follow_up_at", "last_contacted_at", "created_at", "updated_at",
	}
	checkinColumns = []string{
		"id", "church_id", "person_id", "created_by_id", "outcome", "note",
		"happened_at", "next_follow_up_at", "created_at",
	}
)

type personRow struct {
	ID              string      `db:"id"`
	ChurchID        null.String `db:"church_id"`
	Kind            null.String `db:"kind"`
	FirstName       null.String `db:"first_name"`
	LastName        null.String `db:"last_name"`
	Email           null.String `db:"email"`
	Phone           null.String `db:"phone"`
	Address         null.String `db:"address"`
	City            null.String `db:"city"`
	Gender          null.String `db:"gender"`
	Note            null.String `db:"note"`
	Source          null.String `db:"source"`
	Status          null.String `db:"status"`
	AssignedToID    null.String `db:"assigned_to_id"`
	CreatedByID     null.String `db:"created_by_id"`
	InvitedBy       null.String `db:"invited_by"`
	ConvertedAt     null.Time   `db:"converted_at"`
	VisitedAt       null.Time   `db:"visited_at"`
	JoinedAt        null.Time   `db:"joined_at"`
	NextFollowUpAt  null.Time   `db:"next_follow_up_at"`
	LastContactedAt null.Time   `db:"last_contacted_at"`
	CreatedAt       null.Time   `db:"created_at"`
	UpdatedAt       null.Time   `db:"updated_at"`
}

type checkinRow struct {
	ID             string      `db:"id"`
	ChurchID       null.String `db:"church_id"`
	PersonID       null.String `db:"person_id"`
	CreatedByID    null.String `db:"created_by_id"`
	Outcome        null.String `db:"outcome"`
	Note           null.String `db:"note"`
	HappenedAt     null.Time   `db:"happened_at"`
	NextFollowUpAt null.Time   `db:"next_follow_up_at"`
	CreatedAt      null.Time   `db:"created_at"`
}

type statusCountRow struct {
	Kind   string `db:"kind"`
	Status string `db:"status"`
	Count  int    `db:"count"`
}

type personRepository struct {
	exec core.DBExecutor
}

var _ person.Repository = (*personRepository)(nil) // interface compliance check

func NewPersonRepository(exec core.DBExecutor) *personRepository {
	return &personRepository{exec: exec}
}

func (repo personRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo personRepository) row(prsn person.Person) personRow {
	r := personRow{
		ChurchID:        null.NewString(prsn.ChurchID, prsn.ChurchID != ""),
		Kind:            null.NewString(string(prsn.Kind), prsn.Kind != ""),
		FirstName:       null.NewString(prsn.FirstName, prsn.FirstName != ""),
		LastName:        null.NewString(prsn.LastName, prsn.LastName != ""),
		Email:           null.NewString(prsn.Email, prsn.Email != ""),
		Phone:           null.NewString(prsn.Phone, prsn.Phone != ""),
		Address:         null.NewString(prsn.Address, prsn.Address != ""),
		City:            null.NewString(prsn.City, prsn.City != ""),
		Gender:          null.NewString(prsn.Gender, prsn.Gender != ""),
		Note:            null.NewString(prsn.Note, prsn.Note != ""),
		Source:          null.NewString(prsn.Source, prsn.Source != ""),
		Status:          null.NewString(string(prsn.Status), prsn.Status != ""),
		AssignedToID:    null.NewString(prsn.AssignedToID, prsn.AssignedToID != ""),
		CreatedByID:     null.NewString(prsn.CreatedByID, prsn.CreatedByID != ""),
		InvitedBy:       null.NewString(prsn.InvitedBy, prsn.InvitedBy != ""),
		ConvertedAt:     null.NewTime(prsn.ConvertedAt.UTC(), !prsn.ConvertedAt.IsZero()),
		VisitedAt:       null.NewTime(prsn.VisitedAt.UTC(), !prsn.VisitedAt.IsZero()),
		JoinedAt:        null.NewTime(prsn.JoinedAt.UTC(), !prsn.JoinedAt.IsZero()),
		NextFollowUpAt:  null.NewTime(prsn.NextFollowUpAt.UTC(), !prsn.NextFollowUpAt.IsZero()),
		LastContactedAt: null.NewTime(prsn.LastContactedAt.UTC(), !prsn.LastContactedAt.IsZero()),
		CreatedAt:       null.NewTime(prsn.CreatedAt.UTC(), !prsn.CreatedAt.IsZero()),
		UpdatedAt:       null.NewTime(prsn.UpdatedAt.UTC(), !prsn.UpdatedAt.IsZero()),
	}
	if prsn.ID != "" {
		r.ID = prsn.ID
	}
	return r
}

func (repo personRepository) unrow(r personRow) person.Person {
	return person.Person{
		ID:              r.ID,
		ChurchID:        r.ChurchID.String,
		Kind:            person.Kind(r.Kind.String),
		FirstName:       r.FirstName.String,
		LastName:        r.LastName.String,
		Email:           r.Email.String,
		Phone:           r.Phone.String,
		Address:         r.Address.String,
		City:            r.City.String,
		Gender:          r.Gender.String,
		Note:            r.Note.String,
		Source:          r.Source.String,
		Status:          person.Status(r.Status.String),
		AssignedToID:    r.AssignedToID.String,
		CreatedByID:     r.CreatedByID.String,
		InvitedBy:       r.InvitedBy.String,
		ConvertedAt:     r.ConvertedAt.Time,
		VisitedAt:       r.VisitedAt.Time,
		JoinedAt:        r.JoinedAt.Time,
		NextFollowUpAt:  r.NextFollowUpAt.Time,
		LastContactedAt: r.LastContactedAt.Time,
		CreatedAt:       r.CreatedAt.Time,
		UpdatedAt:       r.UpdatedAt.Time,
	}
}

func (repo personRepository) unrowSlice(rows []personRow) []person.Person {
	persons := make([]person.Person, 0, len(rows))
	for _, r := range rows {
		persons = append(persons, repo.unrow(r))
	}
	return persons
}

func (repo personRepository) checkinRow(chk person.Checkin) checkinRow {
	r := checkinRow{
		ChurchID:       null.NewString(chk.ChurchID, chk.ChurchID != ""),
		PersonID:       null.NewString(chk.PersonID, chk.PersonID != ""),
		CreatedByID:    null.NewString(chk.CreatedByID, chk.CreatedByID != ""),
		Outcome:        null.NewString(string(chk.Outcome), chk.Outcome != ""),
		Note:           null.NewString(chk.Note, chk.Note != ""),
		HappenedAt:     null.NewTime(chk.HappenedAt.UTC(), !chk.HappenedAt.IsZero()),
		NextFollowUpAt: null.NewTime(chk.NextFollowUpAt.UTC(), !chk.NextFollowUpAt.IsZero()),
		CreatedAt:      null.NewTime(chk.CreatedAt.UTC(), !chk.CreatedAt.IsZero()),
	}
	if chk.ID != "" {
		r.ID = chk.ID
	}
	return r
}

func (repo personRepository) unrowCheckin(r checkinRow) person.Checkin {
	return person.Checkin{
		ID:             r.ID,
		ChurchID:       r.ChurchID.String,
		PersonID:       r.PersonID.String,
		CreatedByID:    r.CreatedByID.String,
		Outcome:        person.Outcome(r.Outcome.String),
		Note:           r.Note.String,
		HappenedAt:     r.HappenedAt.Time,
		NextFollowUpAt: r.NextFollowUpAt.Time,
		CreatedAt:      r.CreatedAt.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to person.ErrNotFound
func (repo personRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return person.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo personRepository) CreatePerson(ctx context.Context, prsn person.Person, exec ...core.DBExecutor) (person.Person, error) {
	prsn.ID = uuid.New().String()
	r := repo.row(prsn)
	query, args, err := psql.Insert(personTable).
		Columns(personColumns...).
		Values(r.ID, r.ChurchID, r.Kind, r.FirstName, r.LastName, r.Email, r.Phone,
			r.Address, r.City, r.Gender, r.Note, r.Source, r.Status, r.AssignedToID,
			r.CreatedByID, r.InvitedBy, r.ConvertedAt, r.VisitedAt, r.JoinedAt,
			r.NextFollowUpAt, r.LastContactedAt, r.CreatedAt, r.UpdatedAt).
		ToSql()
	if err != nil {
		return person.Person{}, errors.Wrap(err, "building person insert")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return person.Person{}, errors.Wrap(err, "inserting person")
	}
	return repo.unrow(r), nil
}

func (repo personRepository) GetPerson(ctx context.Context, filter person.GetFilter, exec ...core.DBExecutor) (person.Person, error) {
	if _, err := uuid.Parse(filter.ID); err != nil {
		return person.Person{}, person.ErrNotFound
	}
	q := psql.Select(personColumns...).From(personTable).Where(sq.Eq{"id": filter.ID})
	if filter.ChurchID != "" {
		q = q.Where(sq.Eq{"church_id": filter.ChurchID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return person.Person{}, errors.Wrap(err, "building person query")
	}
	var r personRow
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &r, query, args...); err != nil {
		return person.Person{}, repo.trapNoRowsErr(err, "finding person")
	}
	return repo.unrow(r), nil
}

func (repo personRepository) QueryPersons(ctx context.Context, filter *person.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]person.Person, error) {
	q := psql.Select(personColumns...).From(personTable)

	if filter != nil {
		if filter.ChurchID != "" {
			q = q.Where(sq.Eq{"church_id": filter.ChurchID})
		}
		if filter.Kind != "" {
			q = q.Where(sq.Eq{"kind": string(filter.Kind)})
		}
		// persons with a name, email or phone matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			q = q.Where(sq.Or{
				sq.ILike{"first_name": val}, sq.ILike{"last_name": val},
				sq.ILike{"email": val}, sq.ILike{"phone": val},
			})
		}
		if len(filter.Statuses) > 0 {
			statuses := make([]string, 0, len(filter.Statuses))
			for _, s := range filter.Statuses {
				statuses = append(statuses, string(s))
			}
			q = q.Where(sq.Eq{"status": statuses})
		}
		if filter.AssignedToID != "" {
			q = q.Where(sq.Eq{"assigned_to_id": filter.AssignedToID})
		}
		if !filter.CreatedFrom.IsZero() {
			q = q.Where(sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
		}
		if !filter.CreatedTo.IsZero() {
			q = q.Where(sq.LtOrEq{"created_at": filter.CreatedTo.UTC()})
		}
		if !filter.FollowUpFrom.IsZero() {
			q = q.Where(sq.GtOrEq{"next_follow_up_at": filter.FollowUpFrom.UTC()})
		}
		if !filter.FollowUpTo.IsZero() {
			q = q.Where(sq.LtOrEq{"next_follow_up_at": filter.FollowUpTo.UTC()})
		}
	}

	for _, ord := range ordering {
		q = q.OrderBy(ord.String())
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building person query")
	}
	var rows []personRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying persons")
	}
	return repo.unrowSlice(rows), nil
}

// UpdatePerson only sets the non-zero fields of prsn and returns the new state
// of the row. A status change carries the follow-up date along with it: a zero
// NextFollowUpAt then clears the column.
func (repo personRepository) UpdatePerson(ctx context.Context, prsn person.Person, exec ...core.DBExecutor) (person.Person, error) {
	q := psql.Update(personTable).Where(sq.Eq{"id": prsn.ID})

	if prsn.FirstName != "" {
		q = q.Set("first_name", prsn.FirstName)
	}
	if prsn.LastName != "" {
		q = q.Set("last_name", prsn.LastName)
	}
	if prsn.Email != "" {
		q = q.Set("email", prsn.Email)
	}
	if prsn.Phone != "" {
		q = q.Set("phone", prsn.Phone)
	}
	if prsn.Address != "" {
		q = q.Set("address", prsn.Address)
	}
	if prsn.City != "" {
		q = q.Set("city", prsn.City)
	}
	if prsn.Gender != "" {
		q = q.Set("gender", prsn.Gender)
	}
	if prsn.Note != "" {
		q = q.Set("note", prsn.Note)
	}
	if prsn.AssignedToID != "" {
		q = q.Set("assigned_to_id", prsn.AssignedToID)
	}
	if prsn.InvitedBy != "" {
		q = q.Set("invited_by", prsn.InvitedBy)
	}
	if !prsn.ConvertedAt.IsZero() {
		q = q.Set("converted_at", prsn.ConvertedAt.UTC())
	}
	if !prsn.VisitedAt.IsZero() {
		q = q.Set("visited_at", prsn.VisitedAt.UTC())
	}
	if !prsn.JoinedAt.IsZero() {
		q = q.Set("joined_at", prsn.JoinedAt.UTC())
	}
	if prsn.Status != "" {
		q = q.Set("status", string(prsn.Status))
		q = q.Set("next_follow_up_at", null.NewTime(prsn.NextFollowUpAt.UTC(), !prsn.NextFollowUpAt.IsZero()))
	} else if !prsn.NextFollowUpAt.IsZero() {
		q = q.Set("next_follow_up_at", prsn.NextFollowUpAt.UTC())
	}
	if !prsn.LastContactedAt.IsZero() {
		q = q.Set("last_contacted_at", prsn.LastContactedAt.UTC())
	}
	if !prsn.UpdatedAt.IsZero() {
		q = q.Set("updated_at", prsn.UpdatedAt.UTC())
	}

	query, args, err := q.ToSql()
	if err != nil {
		return person.Person{}, errors.Wrap(err, "building person update")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return person.Person{}, errors.Wrap(err, "updating person")
	}
	return repo.GetPerson(ctx, person.GetFilter{ID: prsn.ID}, exec...)
}

func (repo personRepository) DeletePersonsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	query, args, err := psql.Delete(personTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building person delete")
	}
	res, err := repo.getExec(exec).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting persons")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting persons")
	}
	return int(cnt), nil
}

func (repo personRepository) CreateCheckin(ctx context.Context, chk person.Checkin, exec ...core.DBExecutor) (person.Checkin, error) {
	chk.ID = uuid.New().String()
	r := repo.checkinRow(chk)
	query, args, err := psql.Insert(checkinTable).
		Columns(checkinColumns...).
		Values(r.ID, r.ChurchID, r.PersonID, r.CreatedByID, r.Outcome, r.Note,
			r.HappenedAt, r.NextFollowUpAt, r.CreatedAt).
		ToSql()
	if err != nil {
		return person.Checkin{}, errors.Wrap(err, "building checkin insert")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return person.Checkin{}, errors.Wrap(err, "inserting checkin")
	}
	return repo.unrowCheckin(r), nil
}

func (repo personRepository) QueryCheckins(ctx context.Context, filter person.CheckinFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]person.Checkin, error) {
	q := psql.Select(checkinColumns...).From(checkinTable)

	if filter.PersonID != "" {
		q = q.Where(sq.Eq{"person_id": filter.PersonID})
	}
	if filter.CreatedByID != "" {
		q = q.Where(sq.Eq{"created_by_id": filter.CreatedByID})
	}
	if filter.ChurchID != "" {
		q = q.Where(sq.Eq{"church_id": filter.ChurchID})
	}

	for _, ord := range ordering {
		q = q.OrderBy(ord.String())
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building checkin query")
	}
	var rows []checkinRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying checkins")
	}
	checkins := make([]person.Checkin, 0, len(rows))
	for _, r := range rows {
		checkins = append(checkins, repo.unrowCheckin(r))
	}
	return checkins, nil
}

func (repo personRepository) CountByKindAndStatus(ctx context.Context, churchID string, exec ...core.DBExecutor) ([]person.StatusCount, error) {
	query, args, err := psql.Select("kind", "status", "COUNT(*) AS count").
		From(personTable).
		Where(sq.Eq{"church_id": churchID}).
		GroupBy("kind", "status").
		OrderBy("kind", "status").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building person stats query")
	}
	var rows []statusCountRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying person stats")
	}
	counts := make([]person.StatusCount, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, person.StatusCount{
			Kind:   person.Kind(r.Kind),
			Status: person.Status(r.Status),
			Count:  r.Count,
		})
	}
	return counts, nil
}

func (repo personRepository) CountCheckinsSince(ctx context.Context, churchID string, since time.Time, exec ...core.DBExecutor) (int, error) {
	query, args, err := psql.Select("COUNT(*)").
		From(checkinTable).
		Where(sq.Eq{"church_id": churchID}).
		Where(sq.GtOrEq{"happened_at": since.UTC()}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building checkin count query")
	}
	var count int
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &count, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting checkins")
	}
	return count, nil
}

func (repo personRepository) CountFollowUpsDue(ctx context.Context, churchID string, from, until time.Time, exec ...core.DBExecutor) (int, error) {
	query, args, err := psql.Select("COUNT(*)").
		From(personTable).
		Where(sq.Eq{"church_id": churchID}).
		Where(sq.GtOrEq{"next_follow_up_at": from.UTC()}).
		Where(sq.LtOrEq{"next_follow_up_at": until.UTC()}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building follow-up count query")
	}
	var count int
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &count, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting due follow-ups")
	}
	return count, nil
}
