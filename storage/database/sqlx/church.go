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
	"github.com/shepherdcrm/shepherd/core/church"
)

const churchTable = "church"

var churchColumns = []string{
	"id", "name", "slug", "email", "phone", "address", "city", "country", "is_active", "created_at", "updated_at",
}

type churchRow struct {
	ID        string      `db:"id"`
	Name      null.String `db:"name"`
	Slug      null.String `db:"slug"`
	Email     null.String `db:"email"`
	Phone     null.String `db:"phone"`
	Address   null.String `db:"address"`
	City      null.String `db:"city"`
	Country   null.String `db:"country"`
	IsActive  null.Bool   `db:"is_active"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

type churchRepository struct {
	exec core.DBExecutor
}

var _ church.Repository = (*churchRepository)(nil) // interface compliance check

func NewChurchRepository(exec core.DBExecutor) *churchRepository {
	return &churchRepository{exec: exec}
}

func (repo churchRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo churchRepository) row(ch church.Church) churchRow {
	r := churchRow{
		Name:      null.NewString(ch.Name, ch.Name != ""),
		Slug:      null.NewString(ch.Slug, ch.Slug != ""),
		Email:     null.NewString(ch.Email, ch.Email != ""),
		Phone:     null.NewString(ch.Phone, ch.Phone != ""),
		Address:   null.NewString(ch.Address, ch.Address != ""),
		City:      null.NewString(ch.City, ch.City != ""),
		Country:   null.NewString(ch.Country, ch.Country != ""),
		IsActive:  null.BoolFromPtr(ch.IsActive),
		CreatedAt: null.NewTime(ch.CreatedAt.UTC(), !ch.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(ch.UpdatedAt.UTC(), !ch.UpdatedAt.IsZero()),
	}
	if ch.ID != "" {
		r.ID = ch.ID
	}
	return r
}

func (repo churchRepository) unrow(r churchRow) church.Church {
	return church.Church{
		ID:        r.ID,
		Name:      r.Name.String,
		Slug:      r.Slug.String,
		Email:     r.Email.String,
		Phone:     r.Phone.String,
		Address:   r.Address.String,
		City:      r.City.String,
		Country:   r.Country.String,
		IsActive:  r.IsActive.Ptr(),
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func (repo churchRepository) unrowSlice(rows []churchRow) []church.Church {
	churches := make([]church.Church, 0, len(rows))
	for _, r := range rows {
		churches = append(churches, repo.unrow(r))
	}
	return churches
}

// trapNoRowsErr maps psql "no rows" err to church.ErrNotFound
func (repo churchRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return church.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo churchRepository) CheckSlugUniqueness(ctx context.Context, slug string, excludedChurches []church.Church, exec ...core.DBExecutor) error {
	q := psql.Select("COUNT(*)").
		From(churchTable).
		Where(sq.Eq{"slug": slug})
	if len(excludedChurches) > 0 {
		ids := make([]string, 0, len(excludedChurches))
		for _, ch := range excludedChurches {
			ids = append(ids, ch.ID)
		}
		q = q.Where(sq.NotEq{"id": ids})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building church uniqueness query")
	}
	var cnt int
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &cnt, query, args...); err != nil {
		return errors.Wrap(err, "checking church uniqueness")
	}
	if cnt > 0 {
		return church.ErrChurchExists
	}
	return nil
}

func (repo churchRepository) CreateChurch(ctx context.Context, ch church.Church, exec ...core.DBExecutor) (church.Church, error) {
	ch.ID = uuid.New().String()
	r := repo.row(ch)
	query, args, err := psql.Insert(churchTable).
		Columns(churchColumns...).
		Values(r.ID, r.Name, r.Slug, r.Email, r.Phone, r.Address, r.City, r.Country, r.IsActive, r.CreatedAt, r.UpdatedAt).
		ToSql()
	if err != nil {
		return church.Church{}, errors.Wrap(err, "building church insert")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return church.Church{}, errors.Wrap(err, "inserting church")
	}
	return repo.unrow(r), nil
}

func (repo churchRepository) QueryChurches(ctx context.Context, filter *church.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]church.Church, error) {
	q := psql.Select(churchColumns...).From(churchTable)

	if filter != nil {
		// churches with Name, Slug or City matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			q = q.Where(sq.Or{sq.ILike{"name": val}, sq.ILike{"slug": val}, sq.ILike{"city": val}})
		}
		if filter.IsActive != nil {
			q = q.Where(sq.Eq{"is_active": *filter.IsActive})
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
		return nil, errors.Wrap(err, "building church query")
	}
	var rows []churchRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying churches")
	}
	return repo.unrowSlice(rows), nil
}

func (repo churchRepository) GetChurch(ctx context.Context, filter church.GetFilter, exec ...core.DBExecutor) (church.Church, error) {
	q := psql.Select(churchColumns...).From(churchTable)

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return church.Church{}, church.ErrNotFound
		}
		q = q.Where(sq.Eq{"id": filter.ID})
	case filter.Slug != "":
		q = q.Where(sq.Eq{"slug": filter.Slug})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return church.Church{}, errors.Wrap(err, "building church query")
	}
	var r churchRow
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &r, query, args...); err != nil {
		return church.Church{}, repo.trapNoRowsErr(err, "finding church")
	}
	return repo.unrow(r), nil
}

// UpdateChurch only sets the non-zero fields of ch and returns the new state of the row.
func (repo churchRepository) UpdateChurch(ctx context.Context, ch church.Church, exec ...core.DBExecutor) (church.Church, error) {
	q := psql.Update(churchTable).Where(sq.Eq{"id": ch.ID})

	if ch.Name != "" {
		q = q.Set("name", ch.Name)
	}
	if ch.Slug != "" {
		q = q.Set("slug", ch.Slug)
	}
	if ch.Email != "" {
		q = q.Set("email", ch.Email)
	}
	if ch.Phone != "" {
		q = q.Set("phone", ch.Phone)
	}
	if ch.Address != "" {
		q = q.Set("address", ch.Address)
	}
	if ch.City != "" {
		q = q.Set("city", ch.City)
	}
	if ch.Country != "" {
		q = q.Set("country", ch.Country)
	}
	if ch.IsActive != nil {
		q = q.Set("is_active", *ch.IsActive)
	}
	if !ch.UpdatedAt.IsZero() {
		q = q.Set("updated_at", ch.UpdatedAt.UTC())
	}

	query, args, err := q.ToSql()
	if err != nil {
		return church.Church{}, errors.Wrap(err, "building church update")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return church.Church{}, errors.Wrap(err, "updating church")
	}
	return repo.GetChurch(ctx, church.GetFilter{ID: ch.ID}, exec...)
}

func (repo churchRepository) DeleteChurchesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	query, args, err := psql.Delete(churchTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building church delete")
	}
	res, err := repo.getExec(exec).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting churches")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting churches")
	}
	return int(cnt), nil
}
