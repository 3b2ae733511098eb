package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/prayer"
)

type prayerRepository struct {
	db *prayerTable
}

var _ prayer.Repository = (*prayerRepository)(nil) // interface compliance check

func NewPrayerRepository(db *DB) *prayerRepository {
	return &prayerRepository{db: db.prayer}
}

func (repo *prayerRepository) query() []prayer.Request {
	requests := make([]prayer.Request, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		requests = append(requests, *r)
	}
	return requests
}

// sort keeps list results deterministic; only the first ordering field is honored.
func (repo *prayerRepository) sort(requests []prayer.Request, ordering []core.DBOrdering) {
	asc := true
	if len(ordering) > 0 {
		asc = ordering[0].Ascending
	}
	sort.SliceStable(requests, func(i, j int) bool {
		var less bool
		if requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			less = requests[i].ID < requests[j].ID
		} else {
			less = requests[i].CreatedAt.Before(requests[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})
}

func (repo *prayerRepository) CreateRequest(ctx context.Context, req prayer.Request, exec ...core.DBExecutor) (prayer.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	req.ID = uuid.New().String()
	repo.db.table[req.ID] = &req
	return req, nil
}

func (repo *prayerRepository) GetRequest(ctx context.Context, filter prayer.GetFilter, exec ...core.DBExecutor) (prayer.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if req, ok := repo.db.table[filter.ID]; ok {
		if filter.PersonID != "" && req.PersonID != filter.PersonID {
			return prayer.Request{}, prayer.ErrNotFound
		}
		if filter.ChurchID != "" && req.ChurchID != filter.ChurchID {
			return prayer.Request{}, prayer.ErrNotFound
		}
		return *req, nil
	}
	return prayer.Request{}, prayer.ErrNotFound
}

func (repo *prayerRepository) QueryRequests(ctx context.Context, filter *prayer.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]prayer.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	requests := repo.query()

	if filter != nil {
		if filter.ChurchID != "" {
			var filtered []prayer.Request
			for _, r := range requests {
				if r.ChurchID == filter.ChurchID {
					filtered = append(filtered, r)
				}
			}
			requests = filtered
		}
		if filter.PersonID != "" {
			var filtered []prayer.Request
			for _, r := range requests {
				if r.PersonID == filter.PersonID {
					filtered = append(filtered, r)
				}
			}
			requests = filtered
		}
		// requests with search keyword matching Subject or Body ?
		if filter.Search != "" {
			var filtered []prayer.Request
			search := strings.ToLower(filter.Search)
			for _, r := range requests {
				if strings.Contains(strings.ToLower(r.Subject), search) ||
					strings.Contains(strings.ToLower(r.Body), search) {
					filtered = append(filtered, r)
				}
			}
			requests = filtered
		}
		if filter.Answered != nil {
			var filtered []prayer.Request
			for _, r := range requests {
				if r.Answered() == *filter.Answered {
					filtered = append(filtered, r)
				}
			}
			requests = filtered
		}
		if filter.ExcludePrivate {
			var filtered []prayer.Request
			for _, r := range requests {
				if !r.IsPrivate {
					filtered = append(filtered, r)
				}
			}
			requests = filtered
		}
		if !filter.CreatedFrom.IsZero() {
			var filtered []prayer.Request
			timeUTC := filter.CreatedFrom.UTC()
			for _, r := range requests {
				if r.CreatedAt.Equal(timeUTC) || r.CreatedAt.After(timeUTC) {
					filtered = append(filtered, r)
				}
			}
			requests = filtered
		}
		if !filter.CreatedTo.IsZero() {
			var filtered []prayer.Request
			timeUTC := filter.CreatedTo.UTC()
			for _, r := range requests {
				if r.CreatedAt.Before(timeUTC) || r.CreatedAt.Equal(timeUTC) {
					filtered = append(filtered, r)
				}
			}
			requests = filtered
		}
	}

	repo.sort(requests, ordering)
	return requests, nil
}

func (repo *prayerRepository) UpdateRequest(ctx context.Context, req prayer.Request, exec ...core.DBExecutor) (prayer.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origReq, ok := repo.db.table[req.ID]
	if !ok {
		return prayer.Request{}, prayer.ErrNotFound
	}

	// only save set fields
	if req.Subject != "" {
		origReq.Subject = req.Subject
	}
	if req.Body != "" {
		origReq.Body = req.Body
	}
	if !req.AnsweredAt.IsZero() {
		origReq.AnsweredAt = req.AnsweredAt
	}
	if !req.UpdatedAt.IsZero() {
		origReq.UpdatedAt = req.UpdatedAt
	}
	return *origReq, nil
}

func (repo *prayerRepository) CountOpenRequests(ctx context.Context, churchID string, exec ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var cnt int
	for _, r := range repo.db.table {
		if r.ChurchID == churchID && !r.Answered() {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *prayerRepository) DeleteRequestsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
