package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/prayer"
)

const prayerTable = "prayer_request"

var prayerColumns = []string{
	"id", "church_id", "person_id", "subject", "body", "is_private", "answered_at", "created_at", "updated_at",
}

type prayerRow struct {
	ID         string      `db:"id"`
	ChurchID   null.String `db:"church_id"`
	PersonID   null.String `db:"person_id"`
	Subject    null.String `db:"subject"`
	Body       null.String `db:"body"`
	IsPrivate  null.Bool   `db:"is_private"`
	AnsweredAt null.Time   `db:"answered_at"`
	CreatedAt  null.Time   `db:"created_at"`
	UpdatedAt  null.Time   `db:"updated_at"`
}

type prayerRepository struct {
	exec core.DBExecutor
}

var _ prayer.Repository = (*prayerRepository)(nil) // interface compliance check

func NewPrayerRepository(exec core.DBExecutor) *prayerRepository {
	return &prayerRepository{exec: exec}
}

func (repo prayerRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo prayerRepository) row(req prayer.Request) prayerRow {
	r := prayerRow{
		ChurchID:   null.NewString(req.ChurchID, req.ChurchID != ""),
		PersonID:   null.NewString(req.PersonID, req.PersonID != ""),
		Subject:    null.NewString(req.Subject, req.Subject != ""),
		Body:       null.NewString(req.Body, req.Body != ""),
		IsPrivate:  null.BoolFrom(req.IsPrivate),
		AnsweredAt: null.NewTime(req.AnsweredAt.UTC(), !req.AnsweredAt.IsZero()),
		CreatedAt:  null.NewTime(req.CreatedAt.UTC(), !req.CreatedAt.IsZero()),
		UpdatedAt:  null.NewTime(req.UpdatedAt.UTC(), !req.UpdatedAt.IsZero()),
	}
	if req.ID != "" {
		r.ID = req.ID
	}
	return r
}

func (repo prayerRepository) unrow(r prayerRow) prayer.Request {
	return prayer.Request{
		ID:         r.ID,
		ChurchID:   r.ChurchID.String,
		PersonID:   r.PersonID.String,
		Subject:    r.Subject.String,
		Body:       r.Body.String,
		IsPrivate:  r.IsPrivate.Bool,
		AnsweredAt: r.AnsweredAt.Time,
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to prayer.ErrNotFound
func (repo prayerRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return prayer.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo prayerRepository) CreateRequest(ctx context.Context, req prayer.Request, exec ...core.DBExecutor) (prayer.Request, error) {
	req.ID = uuid.New().String()
	r := repo.row(req)
	query, args, err := psql.Insert(prayerTable).
		Columns(prayerColumns...).
		Values(r.ID, r.ChurchID, r.PersonID, r.Subject, r.Body, r.IsPrivate, r.AnsweredAt, r.CreatedAt, r.UpdatedAt).
		ToSql()
	if err != nil {
		return prayer.Request{}, errors.Wrap(err, "building prayer request insert")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return prayer.Request{}, errors.Wrap(err, "inserting prayer request")
	}
	return repo.unrow(r), nil
}

func (repo prayerRepository) GetRequest(ctx context.Context, filter prayer.GetFilter, exec ...core.DBExecutor) (prayer.Request, error) {
	if _, err := uuid.Parse(filter.ID); err != nil {
		return prayer.Request{}, prayer.ErrNotFound
	}
	q := psql.Select(prayerColumns...).From(prayerTable).Where(sq.Eq{"id": filter.ID})
	if filter.PersonID != "" {
		q = q.Where(sq.Eq{"person_id": filter.PersonID})
	}
	if filter.ChurchID != "" {
		q = q.Where(sq.Eq{"church_id": filter.ChurchID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return prayer.Request{}, errors.Wrap(err, "building prayer request query")
	}
	var r prayerRow
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &r, query, args...); err != nil {
		return prayer.Request{}, repo.trapNoRowsErr(err, "finding prayer request")
	}
	return repo.unrow(r), nil
}

func (repo prayerRepository) QueryRequests(ctx context.Context, filter *prayer.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]prayer.Request, error) {
	q := psql.Select(prayerColumns...).From(prayerTable)

	if filter != nil {
		if filter.ChurchID != "" {
			q = q.Where(sq.Eq{"church_id": filter.ChurchID})
		}
		if filter.PersonID != "" {
			q = q.Where(sq.Eq{"person_id": filter.PersonID})
		}
		// requests with Subject or Body matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			q = q.Where(sq.Or{sq.ILike{"subject": val}, sq.ILike{"body": val}})
		}
		if filter.Answered != nil {
			if *filter.Answered {
				q = q.Where("answered_at IS NOT NULL")
			} else {
				q = q.Where("answered_at IS NULL")
			}
		}
		if filter.ExcludePrivate {
			q = q.Where(sq.Eq{"is_private": false})
		}
		if !filter.CreatedFrom.IsZero() {
			q = q.Where(sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
		}
		if !filter.CreatedTo.IsZero() {
			q = q.Where(sq.LtOrEq{"created_at": filter.CreatedTo.UTC()})
		}
	}

	for _, ord := range ordering {
		q = q.OrderBy(ord.String())
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building prayer request query")
	}
	var rows []prayerRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying prayer requests")
	}
	requests := make([]prayer.Request, 0, len(rows))
	for _, r := range rows {
		requests = append(requests, repo.unrow(r))
	}
	return requests, nil
}

// UpdateRequest only sets the non-zero fields of req and returns the new state of the row.
func (repo prayerRepository) UpdateRequest(ctx context.Context, req prayer.Request, exec ...core.DBExecutor) (prayer.Request, error) {
	q := psql.Update(prayerTable).Where(sq.Eq{"id": req.ID})

	if req.Subject != "" {
		q = q.Set("subject", req.Subject)
	}
	if req.Body != "" {
		q = q.Set("body", req.Body)
	}
	if !req.AnsweredAt.IsZero() {
		q = q.Set("answered_at", req.AnsweredAt.UTC())
	}
	if !req.UpdatedAt.IsZero() {
		q = q.Set("updated_at", req.UpdatedAt.UTC())
	}

	query, args, err := q.ToSql()
	if err != nil {
		return prayer.Request{}, errors.Wrap(err, "building prayer request update")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return prayer.Request{}, errors.Wrap(err, "updating prayer request")
	}
	return repo.GetRequest(ctx, prayer.GetFilter{ID: req.ID}, exec...)
}

func (repo prayerRepository) CountOpenRequests(ctx context.Context, churchID string, exec ...core.DBExecutor) (int, error) {
	query, args, err := psql.Select("COUNT(*)").
		From(prayerTable).
		Where(sq.Eq{"church_id": churchID}).
		Where("answered_at IS NULL").
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building prayer request count query")
	}
	var count int
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &count, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting open prayer requests")
	}
	return count, nil
}

func (repo prayerRepository) DeleteRequestsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	query, args, err := psql.Delete(prayerTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building prayer request delete")
	}
	res, err := repo.getExec(exec).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting prayer requests")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting prayer requests")
	}
	return int(cnt), nil
}
