package church

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/shepherdcrm/shepherd/core"
)

var (
	// errors
	ErrNotFound     = errors.New("church not found")
	ErrChurchExists = errors.New("a church with this slug already exists")
)

type (
	Repository interface {
		CheckSlugUniqueness(ctx context.Context, slug string, excludedChurches []Church, exec ...core.DBExecutor) error
		CreateChurch(ctx context.Context, ch Church, exec ...core.DBExecutor) (Church, error)
		GetChurch(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Church, error)
		// QueryChurches applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Church.Name, Church.Slug or Church.City.
		QueryChurches(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Church, error)
		UpdateChurch(ctx context.Context, ch Church, exec ...core.DBExecutor) (Church, error)
		DeleteChurchesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		CheckUniqueness(ctx context.Context, slug string, excl ...Church) error
		Create(ctx context.Context, nc NewChurch) (Church, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Church, error)
		GetByID(ctx context.Context, id string) (Church, error)
		GetBySlug(ctx context.Context, slug string) (Church, error)
		Update(ctx context.Context, id string, uc UpdateChurch) (Church, error)
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

func (svc *service) CheckUniqueness(ctx context.Context, slug string, excl ...Church) error {
	if err := svc.repo.CheckSlugUniqueness(ctx, slug, excl); err != nil {
		if err == ErrChurchExists {
			return core.NewValidationError(err, core.FieldError{Field: "slug", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nc NewChurch) (Church, error) {
	now := time.Now().UTC()
	ch := Church{
		Name:      nc.Name,
		Slug:      nc.Slug,
		Email:     nc.Email,
		Phone:     nc.Phone,
		Address:   nc.Address,
		City:      nc.City,
		Country:   nc.Country,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ch.SetActive(true)
	return svc.repo.CreateChurch(ctx, ch)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Church, error) {
	return svc.repo.QueryChurches(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Church, error) {
	return svc.repo.GetChurch(ctx, GetFilter{ID: id})
}

func (svc *service) GetBySlug(ctx context.Context, slug string) (Church, error) {
	return svc.repo.GetChurch(ctx, GetFilter{Slug: core.CleanString(slug, true /* lower */)})
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateChurch) (Church, error) {
	ch := Church{
		ID:        id,
		Name:      uc.Name,
		Slug:      uc.Slug,
		Email:     uc.Email,
		Phone:     uc.Phone,
		Address:   uc.Address,
		City:      uc.City,
		Country:   uc.Country,
		IsActive:  uc.IsActive,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateChurch(ctx, ch)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteChurchesByID(ctx, ids)
	return err
}
