package journal

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/shepherdcrm/shepherd/core"
)

var ErrNotFound = errors.New("journal entry not found")

type (
	Repository interface {
		CreateEntry(ctx context.Context, entry Entry, exec ...core.DBExecutor) (Entry, error)
		GetEntry(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Entry, error)
		// QueryEntries applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Entry.Title or Entry.Body.
		QueryEntries(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Entry, error)
		UpdateEntry(ctx context.Context, entry Entry, exec ...core.DBExecutor) (Entry, error)
		DeleteEntriesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, churchID, personID string, ne NewEntry) (Entry, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Entry, error)
		Get(ctx context.Context, filter GetFilter) (Entry, error)
		Update(ctx context.Context, id string, ue UpdateEntry) (Entry, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		db   core.DB
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository) *service {
	return &service{
		db:   db,
		repo: repo,
	}
}

func (svc *service) Create(ctx context.Context, churchID, personID string, ne NewEntry) (Entry, error) {
	now := time.Now().UTC()
	entry := Entry{
		ChurchID:  churchID,
		PersonID:  personID,
		Title:     ne.Title,
		Body:      ne.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateEntry(ctx, entry)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Entry, error) {
	return svc.repo.QueryEntries(ctx, filter, ordering)
}

func (svc *service) Get(ctx context.Context, filter GetFilter) (Entry, error) {
	return svc.repo.GetEntry(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, ue UpdateEntry) (Entry, error) {
	entry := Entry{
		ID:        id,
		Title:     ue.Title,
		Body:      ue.Body,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateEntry(ctx, entry)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteEntriesByID(ctx, ids)
	return err
}
