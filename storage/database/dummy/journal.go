package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/journal"
)

type journalRepository struct {
	db *journalTable
}

var _ journal.Repository = (*journalRepository)(nil) // interface compliance check

func NewJournalRepository(db *DB) *journalRepository {
	return &journalRepository{db: db.journal}
}

func (repo *journalRepository) query() []journal.Entry {
	entries := make([]journal.Entry, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		entries = append(entries, *e)
	}
	return entries
}

// sort keeps list results deterministic; only the first ordering field is honored.
func (repo *journalRepository) sort(entries []journal.Entry, ordering []core.DBOrdering) {
	asc := true
	if len(ordering) > 0 {
		asc = ordering[0].Ascending
	}
	sort.SliceStable(entries, func(i, j int) bool {
		var less bool
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			less = entries[i].ID < entries[j].ID
		} else {
			less = entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})
}

func (repo *journalRepository) CreateEntry(ctx context.Context, entry journal.Entry, exec ...core.DBExecutor) (journal.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	entry.ID = uuid.New().String()
	repo.db.table[entry.ID] = &entry
	return entry, nil
}

func (repo *journalRepository) GetEntry(ctx context.Context, filter journal.GetFilter, exec ...core.DBExecutor) (journal.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if entry, ok := repo.db.table[filter.ID]; ok {
		if filter.PersonID != "" && entry.PersonID != filter.PersonID {
			return journal.Entry{}, journal.ErrNotFound
		}
		return *entry, nil
	}
	return journal.Entry{}, journal.ErrNotFound
}

func (repo *journalRepository) QueryEntries(ctx context.Context, filter *journal.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]journal.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := repo.query()

	if filter != nil {
		if filter.PersonID != "" {
			var filtered []journal.Entry
			for _, e := range entries {
				if e.PersonID == filter.PersonID {
					filtered = append(filtered, e)
				}
			}
			entries = filtered
		}
		// entries with search keyword matching Title or Body ?
		if filter.Search != "" {
			var filtered []journal.Entry
			search := strings.ToLower(filter.Search)
			for _, e := range entries {
				if strings.Contains(strings.ToLower(e.Title), search) ||
					strings.Contains(strings.ToLower(e.Body), search) {
					filtered = append(filtered, e)
				}
			}
			entries = filtered
		}
		if !filter.CreatedFrom.IsZero() {
			var filtered []journal.Entry
			timeUTC := filter.CreatedFrom.UTC()
			for _, e := range entries {
				if e.CreatedAt.Equal(timeUTC) || e.CreatedAt.After(timeUTC) {
					filtered = append(filtered, e)
				}
			}
			entries = filtered
		}
		if !filter.CreatedTo.IsZero() {
			var filtered []journal.Entry
			timeUTC := filter.CreatedTo.UTC()
			for _, e := range entries {
				if e.CreatedAt.Before(timeUTC) || e.CreatedAt.Equal(timeUTC) {
					filtered = append(filtered, e)
				}
			}
			entries = filtered
		}
	}

	repo.sort(entries, ordering)
	return entries, nil
}

func (repo *journalRepository) UpdateEntry(ctx context.Context, entry journal.Entry, exec ...core.DBExecutor) (journal.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origEntry, ok := repo.db.table[entry.ID]
	if !ok {
		return journal.Entry{}, journal.ErrNotFound
	}

	// only save set fields
	if entry.Title != "" {
		origEntry.Title = entry.Title
	}
	if entry.Body != "" {
		origEntry.Body = entry.Body
	}
	if !entry.UpdatedAt.IsZero() {
		origEntry.UpdatedAt = entry.UpdatedAt
	}
	return *origEntry, nil
}

func (repo *journalRepository) DeleteEntriesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
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
