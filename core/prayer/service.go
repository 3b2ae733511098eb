package prayer

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/shepherdcrm/shepherd/core"
)

var ErrNotFound = errors.New("prayer request not found")

type (
	Repository interface {
		CreateRequest(ctx context.Context, req Request, exec ...core.DBExecutor) (Request, error)
		GetRequest(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Request, error)
		// QueryRequests applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Request.Subject or Request.Body.
		QueryRequests(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Request, error)
		UpdateRequest(ctx context.Context, req Request, exec ...core.DBExecutor) (Request, error)
		DeleteRequestsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		CountOpenRequests(ctx context.Context, churchID string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, churchID, personID string, nr NewRequest) (Request, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Request, error)
		Get(ctx context.Context, filter GetFilter) (Request, error)
		MarkAnswered(ctx context.Context, req Request) (Request, error)
		CountOpen(ctx context.Context, churchID string) (int, error)
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

func (svc *service) Create(ctx context.Context, churchID, personID string, nr NewRequest) (Request, error) {
	now := time.Now().UTC()
	req := Request{
		ChurchID:  churchID,
		PersonID:  personID,
		Subject:   nr.Subject,
		Body:      nr.Body,
		IsPrivate: nr.IsPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateRequest(ctx, req)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Request, error) {
	return svc.repo.QueryRequests(ctx, filter, ordering)
}

func (svc *service) Get(ctx context.Context, filter GetFilter) (Request, error) {
	return svc.repo.GetRequest(ctx, filter)
}

func (svc *service) MarkAnswered(ctx context.Context, req Request) (Request, error) {
	if req.Answered() {
		return req, nil
	}
	now := time.Now().UTC()
	req.AnsweredAt = now
	req.UpdatedAt = now
	return svc.repo.UpdateRequest(ctx, req)
}

func (svc *service) CountOpen(ctx context.Context, churchID string) (int, error) {
	return svc.repo.CountOpenRequests(ctx, churchID)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteRequestsByID(ctx, ids)
	return err
}
