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
	"github.com/shepherdcrm/shepherd/core/journal"
)

const journalTable = "journal_entry"

var journalColumns = []string{
	"id", "church_id", "person_id", "title", "body", "created_at", "updated_at",
}

type journalRow struct {
	ID        string      `db:"id"`
	ChurchID  null.String `db:"church_id"`
	PersonID  null.String `db:"person_id"`
	Title     null.String `db:"title"`
	Body      null.String `db:"body"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

type journalRepository struct {
	exec core.DBExecutor
}

var _ journal.Repository = (*journalRepository)(nil) // interface compliance check

func NewJournalRepository(exec core.DBExecutor) *journalRepository {
	return &journalRepository{exec: exec}
}

func (repo journalRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo journalRepository) row(entry journal.Entry) journalRow {
	r := journalRow{
		ChurchID:  null.NewString(entry.ChurchID, entry.ChurchID != ""),
		PersonID:  null.NewString(entry.PersonID, entry.PersonID != ""),
		Title:     null.NewString(entry.Title, entry.Title != ""),
		Body:      null.NewString(entry.Body, entry.Body != ""),
		CreatedAt: null.NewTime(entry.CreatedAt.UTC(), !entry.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(entry.UpdatedAt.UTC(), !entry.UpdatedAt.IsZero()),
	}
	if entry.ID != "" {
		r.ID = entry.ID
	}
	return r
}

func (repo journalRepository) unrow(r journalRow) journal.Entry {
	return journal.Entry{
		ID:        r.ID,
		ChurchID:  r.ChurchID.String,
		PersonID:  r.PersonID.String,
		Title:     r.Title.String,
		Body:      r.Body.String,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to journal.ErrNotFound
func (repo journalRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return journal.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo journalRepository) CreateEntry(ctx context.Context, entry journal.Entry, exec ...core.DBExecutor) (journal.Entry, error) {
	entry.ID = uuid.New().String()
	r := repo.row(entry)
	query, args, err := psql.Insert(journalTable).
		Columns(journalColumns...).
		Values(r.ID, r.ChurchID, r.PersonID, r.Title, r.Body, r.CreatedAt, r.UpdatedAt).
		ToSql()
	if err != nil {
		return journal.Entry{}, errors.Wrap(err, "building journal entry insert")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return journal.Entry{}, errors.Wrap(err, "inserting journal entry")
	}
	return repo.unrow(r), nil
}

func (repo journalRepository) GetEntry(ctx context.Context, filter journal.GetFilter, exec ...core.DBExecutor) (journal.Entry, error) {
	if _, err := uuid.Parse(filter.ID); err != nil {
		return journal.Entry{}, journal.ErrNotFound
	}
	q := psql.Select(journalColumns...).From(journalTable).Where(sq.Eq{"id": filter.ID})
	if filter.PersonID != "" {
		q = q.Where(sq.Eq{"person_id": filter.PersonID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return journal.Entry{}, errors.Wrap(err, "building journal entry query")
	}
	var r journalRow
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &r, query, args...); err != nil {
		return journal.Entry{}, repo.trapNoRowsErr(err, "finding journal entry")
	}
	return repo.unrow(r), nil
}

func (repo journalRepository) QueryEntries(ctx context.Context, filter *journal.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]journal.Entry, error) {
	q := psql.Select(journalColumns...).From(journalTable)

	if filter != nil {
		if filter.PersonID != "" {
			q = q.Where(sq.Eq{"person_id": filter.PersonID})
		}
		// entries with Title or Body matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			q = q.Where(sq.Or{sq.ILike{"title": val}, sq.ILike{"body": val}})
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
		return nil, errors.Wrap(err, "building journal entry query")
	}
	var rows []journalRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying journal entries")
	}
	entries := make([]journal.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, repo.unrow(r))
	}
	return entries, nil
}

// UpdateEntry only sets the non-zero fields of entry and returns the new state of the row.
func (repo journalRepository) UpdateEntry(ctx context.Context, entry journal.Entry, exec ...core.DBExecutor) (journal.Entry, error) {
	q := psql.Update(journalTable).Where(sq.Eq{"id": entry.ID})

	if entry.Title != "" {
		q = q.Set("title", entry.Title)
	}
	if entry.Body != "" {
		q = q.Set("body", entry.Body)
	}
	if !entry.UpdatedAt.IsZero() {
		q = q.Set("updated_at", entry.UpdatedAt.UTC())
	}

	query, args, err := q.ToSql()
	if err != nil {
		return journal.Entry{}, errors.Wrap(err, "building journal entry update")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return journal.Entry{}, errors.Wrap(err, "updating journal entry")
	}
	return repo.GetEntry(ctx, journal.GetFilter{ID: entry.ID}, exec...)
}

func (repo journalRepository) DeleteEntriesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	query, args, err := psql.Delete(journalTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building journal entry delete")
	}
	res, err := repo.getExec(exec).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting journal entries")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting journal entries")
	}
	return int(cnt), nil
}
