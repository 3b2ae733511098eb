package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/church"
)

type churchRepository struct {
	db *churchTable
}

var _ church.Repository = (*churchRepository)(nil) // interface compliance check

func NewChurchRepository(db *DB) *churchRepository {
	return &churchRepository{db: db.church}
}

func (repo *churchRepository) query() []church.Church {
	churches := make([]church.Church, 0, len(repo.db.table))
	for _, ch := range repo.db.table {
		churches = append(churches, *ch)
	}
	return churches
}

// sort keeps list results deterministic; only the first ordering field is honored.
func (repo *churchRepository) sort(churches []church.Church, ordering []core.DBOrdering) {
	field, asc := "created_at", true
	if len(ordering) > 0 {
		field, asc = ordering[0].Field, ordering[0].Ascending
	}
	sort.SliceStable(churches, func(i, j int) bool {
		var less bool
		switch field {
		case "name":
			less = churches[i].Name < churches[j].Name
		case "slug":
			less = churches[i].Slug < churches[j].Slug
		default:
			if churches[i].CreatedAt.Equal(churches[j].CreatedAt) {
				less = churches[i].ID < churches[j].ID
			} else {
				less = churches[i].CreatedAt.Before(churches[j].CreatedAt)
			}
		}
		if asc {
			return less
		}
		return !less
	})
}

func (repo *churchRepository) CheckSlugUniqueness(ctx context.Context, slug string, excludedChurches []church.Church, exec ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, ch := range repo.query() {
		if slug != "" && ch.Slug == slug {
			excluded := false
			for _, excl := range excludedChurches {
				if excl.ID == ch.ID {
					excluded = true
					break
				}
			}
			if !excluded {
				return church.ErrChurchExists
			}
		}
	}
	return nil
}

func (repo *churchRepository) CreateChurch(ctx context.Context, ch church.Church, exec ...core.DBExecutor) (church.Church, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ch.ID = uuid.New().String()
	repo.db.table[ch.ID] = &ch
	return ch, nil
}

func (repo *churchRepository) GetChurch(ctx context.Context, filter church.GetFilter, exec ...core.DBExecutor) (church.Church, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if ch, ok := repo.db.table[filter.ID]; ok {
			return *ch, nil
		}
		return church.Church{}, church.ErrNotFound
	}

	if filter.Slug != "" {
		for _, ch := range repo.query() {
			if ch.Slug == filter.Slug {
				return ch, nil
			}
		}
	}
	return church.Church{}, church.ErrNotFound
}

func (repo *churchRepository) QueryChurches(ctx context.Context, filter *church.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]church.Church, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	churches := repo.query()

	if filter != nil {
		// churches with search keyword matching any Name, Slug or City ?
		if filter.Search != "" {
			var filtered []church.Church
			search := strings.ToLower(filter.Search)
			for _, ch := range churches {
				if strings.Contains(strings.ToLower(ch.Name), search) ||
					strings.Contains(strings.ToLower(ch.Slug), search) ||
					strings.Contains(strings.ToLower(ch.City), search) {
					filtered = append(filtered, ch)
				}
			}
			churches = filtered
		}
		if filter.IsActive != nil {
			var filtered []church.Church
			for _, ch := range churches {
				if ch.Active() == *filter.IsActive {
					filtered = append(filtered, ch)
				}
			}
			churches = filtered
		}
		if !filter.CreatedFrom.IsZero() {
			var filtered []church.Church
			for _, ch := range churches {
				if !ch.CreatedAt.Before(filter.CreatedFrom.UTC()) {
					filtered = append(filtered, ch)
				}
			}
			churches = filtered
		}
		if !filter.CreatedTo.IsZero() {
			var filtered []church.Church
			for _, ch := range churches {
				if !ch.CreatedAt.After(filter.CreatedTo.UTC()) {
					filtered = append(filtered, ch)
				}
			}
			churches = filtered
		}
	}

	repo.sort(churches, ordering)
	return churches, nil
}

func (repo *churchRepository) UpdateChurch(ctx context.Context, ch church.Church, exec ...core.DBExecutor) (church.Church, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origCh, ok := repo.db.table[ch.ID]
	if !ok {
		return church.Church{}, church.ErrNotFound
	}

	// only save set fields
	if ch.Name != "" {
		origCh.Name = ch.Name
	}
	if ch.Slug != "" {
		origCh.Slug = ch.Slug
	}
	if ch.Email != "" {
		origCh.Email = ch.Email
	}
	if ch.Phone != "" {
		origCh.Phone = ch.Phone
	}
	if ch.Address != "" {
		origCh.Address = ch.Address
	}
	if ch.City != "" {
		origCh.City = ch.City
	}
	if ch.Country != "" {
		origCh.Country = ch.Country
	}
	if ch.IsActive != nil {
		origCh.IsActive = ch.IsActive
	}
	if !ch.UpdatedAt.IsZero() {
		origCh.UpdatedAt = ch.UpdatedAt
	}
	return *origCh, nil
}

func (repo *churchRepository) DeleteChurchesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
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
