package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/person"
)

type personRepository struct {
	db      *personTable
	checkin *checkinTable
}

var _ person.Repository = (*personRepository)(nil) // interface compliance check

func NewPersonRepository(db *DB) *personRepository {
	return &personRepository{db: db.person, checkin: db.checkin}
}

func (repo *personRepository) query() []person.Person {
	persons := make([]person.Person, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		persons = append(persons, *p)
	}
	return persons
}

// sort keeps list results deterministic; only the first ordering field is honored.
func (repo *personRepository) sort(persons []person.Person, ordering []core.DBOrdering) {
	field, asc := "created_at", true
	if len(ordering) > 0 {
		field, asc = ordering[0].Field, ordering[0].Ascending
	}
	sort.SliceStable(persons, func(i, j int) bool {
		var less bool
		switch field {
		case "first_name":
			less = persons[i].FirstName < persons[j].FirstName
		case "last_name":
			less = persons[i].LastName < persons[j].LastName
		case "next_follow_up_at":
			less = persons[i].NextFollowUpAt.Before(persons[j].NextFollowUpAt)
		default:
			if persons[i].CreatedAt.Equal(persons[j].CreatedAt) {
				less = persons[i].ID < persons[j].ID
			} else {
				less = persons[i].CreatedAt.Before(persons[j].CreatedAt)
			}
		}
		if asc {
			return less
		}
		return !less
	})
}

func (repo *personRepository) CreatePerson(ctx context.Context, prsn person.Person, exec ...core.DBExecutor) (person.Person, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	prsn.ID = uuid.New().String()
	repo.db.table[prsn.ID] = &prsn
	return prsn, nil
}

func (repo *personRepository) GetPerson(ctx context.Context, filter person.GetFilter, exec ...core.DBExecutor) (person.Person, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prsn, ok := repo.db.table[filter.ID]; ok {
		if filter.ChurchID != "" && prsn.ChurchID != filter.ChurchID {
			return person.Person{}, person.ErrNotFound
		}
		return *prsn, nil
	}
	return person.Person{}, person.ErrNotFound
}

func (repo *personRepository) QueryPersons(ctx context.Context, filter *person.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]person.Person, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	persons := repo.query()

	if filter != nil {
		if filter.ChurchID != "" {
			var filtered []person.Person
			for _, p := range persons {
				if p.ChurchID == filter.ChurchID {
					filtered = append(filtered, p)
				}
			}
			persons = filtered
		}
		if filter.Kind != "" {
			var filtered []person.Person
			for _, p := range persons {
				if p.Kind == filter.Kind {
					filtered = append(filtered, p)
				}
			}
			persons = filtered
		}
		// persons with search keyword matching any name, email or phone ?
		if filter.Search != "" {
			var filtered []person.Person
			search := strings.ToLower(filter.Search)
			for _, p := range persons {
				if strings.Contains(strings.ToLower(p.FirstName), search) ||
					strings.Contains(strings.ToLower(p.LastName), search) ||
					strings.Contains(strings.ToLower(p.Email), search) ||
					strings.Contains(strings.ToLower(p.Phone), search) {
					filtered = append(filtered, p)
				}
			}
			persons = filtered
		}
		if len(filter.Statuses) > 0 {
			var filtered []person.Person
			for _, p := range persons {
				for _, s := range filter.Statuses {
					if p.Status == s {
						filtered = append(filtered, p)
						break
					}
				}
			}
			persons = filtered
		}
		if filter.AssignedToID != "" {
			var filtered []person.Person
			for _, p := range persons {
				if p.AssignedToID == filter.AssignedToID {
					filtered = append(filtered, p)
				}
			}
			persons = filtered
		}
		if !filter.CreatedFrom.IsZero() {
			var filtered []person.Person
			timeUTC := filter.CreatedFrom.UTC()
			for _, p := range persons {
				if p.CreatedAt.Equal(timeUTC) || p.CreatedAt.After(timeUTC) {
					filtered = append(filtered, p)
				}
			}
			persons = filtered
		}
		if !filter.CreatedTo.IsZero() {
			var filtered []person.Person
			timeUTC := filter.CreatedTo.UTC()
			for _, p := range persons {
				if p.CreatedAt.Before(timeUTC) || p.CreatedAt.Equal(timeUTC) {
					filtered = append(filtered, p)
				}
			}
			persons = filtered
		}
		if !filter.FollowUpFrom.IsZero() {
			var filtered []person.Person
			timeUTC := filter.FollowUpFrom.UTC()
			for _, p := range persons {
				if !p.NextFollowUpAt.IsZero() && (p.NextFollowUpAt.Equal(timeUTC) || p.NextFollowUpAt.After(timeUTC)) {
					filtered = append(filtered, p)
				}
			}
			persons = filtered
		}
		if !filter.FollowUpTo.IsZero() {
			var filtered []person.Person
			timeUTC := filter.FollowUpTo.UTC()
			for _, p := range persons {
				if !p.NextFollowUpAt.IsZero() && (p.NextFollowUpAt.Before(timeUTC) || p.NextFollowUpAt.Equal(timeUTC)) {
					filtered = append(filtered, p)
				}
			}
			persons = filtered
		}
	}

	repo.sort(persons, ordering)
	return persons, nil
}

func (repo *personRepository) UpdatePerson(ctx context.Context, prsn person.Person, exec ...core.DBExecutor) (person.Person, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origPrsn, ok := repo.db.table[prsn.ID]
	if !ok {
		return person.Person{}, person.ErrNotFound
	}

	// only save set fields
	if prsn.FirstName != "" {
		origPrsn.FirstName = prsn.FirstName
	}
	if prsn.LastName != "" {
		origPrsn.LastName = prsn.LastName
	}
	if prsn.Email != "" {
		origPrsn.Email = prsn.Email
	}
	if prsn.Phone != "" {
		origPrsn.Phone = prsn.Phone
	}
	if prsn.Address != "" {
		origPrsn.Address = prsn.Address
	}
	if prsn.City != "" {
		origPrsn.City = prsn.City
	}
	if prsn.Gender != "" {
		origPrsn.Gender = prsn.Gender
	}
	if prsn.Note != "" {
		origPrsn.Note = prsn.Note
	}
	if prsn.AssignedToID != "" {
		origPrsn.AssignedToID = prsn.AssignedToID
	}
	if prsn.InvitedBy != "" {
		origPrsn.InvitedBy = prsn.InvitedBy
	}
	if !prsn.ConvertedAt.IsZero() {
		origPrsn.ConvertedAt = prsn.ConvertedAt
	}
	if !prsn.VisitedAt.IsZero() {
		origPrsn.VisitedAt = prsn.VisitedAt
	}
	if !prsn.JoinedAt.IsZero() {
		origPrsn.JoinedAt = prsn.JoinedAt
	}
	// a status change carries the follow-up date along; zero clears it
	if prsn.Status != "" {
		origPrsn.Status = prsn.Status
		origPrsn.NextFollowUpAt = prsn.NextFollowUpAt
	} else if !prsn.NextFollowUpAt.IsZero() {
		origPrsn.NextFollowUpAt = prsn.NextFollowUpAt
	}
	if !prsn.LastContactedAt.IsZero() {
		origPrsn.LastContactedAt = prsn.LastContactedAt
	}
	if !prsn.UpdatedAt.IsZero() {
		origPrsn.UpdatedAt = prsn.UpdatedAt
	}
	return *origPrsn, nil
}

func (repo *personRepository) DeletePersonsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
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

func (repo *personRepository) CreateCheckin(ctx context.Context, chk person.Checkin, exec ...core.DBExecutor) (person.Checkin, error) {
	repo.checkin.Lock()
	defer repo.checkin.Unlock()

	chk.ID = uuid.New().String()
	repo.checkin.table[chk.ID] = &chk
	return chk, nil
}

func (repo *personRepository) QueryCheckins(ctx context.Context, filter person.CheckinFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]person.Checkin, error) {
	repo.checkin.RLock()
	defer repo.checkin.RUnlock()

	checkins := make([]person.Checkin, 0, len(repo.checkin.table))
	for _, chk := range repo.checkin.table {
		if filter.PersonID != "" && chk.PersonID != filter.PersonID {
			continue
		}
		if filter.CreatedByID != "" && chk.CreatedByID != filter.CreatedByID {
			continue
		}
		if filter.ChurchID != "" && chk.ChurchID != filter.ChurchID {
			continue
		}
		checkins = append(checkins, *chk)
	}

	asc := true
	if len(ordering) > 0 {
		asc = ordering[0].Ascending
	}
	sort.SliceStable(checkins, func(i, j int) bool {
		var less bool
		if checkins[i].CreatedAt.Equal(checkins[j].CreatedAt) {
			less = checkins[i].ID < checkins[j].ID
		} else {
			less = checkins[i].CreatedAt.Before(checkins[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})
	return checkins, nil
}

func (repo *personRepository) CountByKindAndStatus(ctx context.Context, churchID string, exec ...core.DBExecutor) ([]person.StatusCount, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	type key struct {
		kind   person.Kind
		status person.Status
	}
	byKey := make(map[key]int)
	for _, p := range repo.query() {
		if p.ChurchID != churchID {
			continue
		}
		byKey[key{p.Kind, p.Status}]++
	}

	counts := make([]person.StatusCount, 0, len(byKey))
	for k, cnt := range byKey {
		counts = append(counts, person.StatusCount{Kind: k.kind, Status: k.status, Count: cnt})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Kind == counts[j].Kind {
			return counts[i].Status < counts[j].Status
		}
		return counts[i].Kind < counts[j].Kind
	})
	return counts, nil
}

func (repo *personRepository) CountCheckinsSince(ctx context.Context, churchID string, since time.Time, exec ...core.DBExecutor) (int, error) {
	repo.checkin.RLock()
	defer repo.checkin.RUnlock()

	var cnt int
	sinceUTC := since.UTC()
	for _, chk := range repo.checkin.table {
		if chk.ChurchID != churchID {
			continue
		}
		if chk.HappenedAt.Equal(sinceUTC) || chk.HappenedAt.After(sinceUTC) {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *personRepository) CountFollowUpsDue(ctx context.Context, churchID string, from, until time.Time, exec ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var cnt int
	fromUTC, untilUTC := from.UTC(), until.UTC()
	for _, p := range repo.db.table {
		if p.ChurchID != churchID || p.NextFollowUpAt.IsZero() {
			continue
		}
		if p.NextFollowUpAt.Before(fromUTC) || p.NextFollowUpAt.After(untilUTC) {
			continue
		}
		cnt++
	}
	return cnt, nil
}
