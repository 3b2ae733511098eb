package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shepherdcrm/shepherd/core/church"
	"github.com/shepherdcrm/shepherd/core/journal"
	"github.com/shepherdcrm/shepherd/core/person"
	"github.com/shepherdcrm/shepherd/core/prayer"
	"github.com/shepherdcrm/shepherd/core/user"
)

func CreateChurch(
	t *testing.T,
	repo church.Repository,
	name, slug string,
	isActive bool,
	createdAt ...time.Time,
) church.Church {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if slug == "" {
		slug = church.Slugify(name)
	}
	ch := church.Church{
		Name:      name,
		Slug:      slug,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	ch.SetActive(isActive)
	ch, err := repo.CreateChurch(context.Background(), ch)
	if err != nil {
		t.Fatalf("CreateChurch() failed: %v", err)
	}
	return ch
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	churchID, personID string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		ChurchID:  churchID,
		PersonID:  personID,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreatePerson(
	t *testing.T,
	repo person.Repository,
	churchID string,
	kind person.Kind,
	firstName, lastName string,
	status person.Status,
	assignedToID string,
	createdAt ...time.Time,
) person.Person {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	prsn := person.Person{
		ChurchID:     churchID,
		Kind:         kind,
		FirstName:    firstName,
		LastName:     lastName,
		Source:       person.SourceStaff,
		Status:       status,
		AssignedToID: assignedToID,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	}
	prsn, err := repo.CreatePerson(context.Background(), prsn)
	if err != nil {
		t.Fatalf("CreatePerson() failed: %v", err)
	}
	return prsn
}

func CreateCheckin(
	t *testing.T,
	repo person.Repository,
	prsn person.Person,
	createdByID string,
	outcome person.Outcome,
	note string,
	happenedAt ...time.Time,
) person.Checkin {
	tstamp := time.Now().UTC()
	if len(happenedAt) > 0 {
		tstamp = happenedAt[0].UTC()
	}
	chk := person.Checkin{
		ChurchID:    prsn.ChurchID,
		PersonID:    prsn.ID,
		CreatedByID: createdByID,
		Outcome:     outcome,
		Note:        note,
		HappenedAt:  tstamp,
		CreatedAt:   tstamp,
	}
	chk, err := repo.CreateCheckin(context.Background(), chk)
	if err != nil {
		t.Fatalf("CreateCheckin() failed: %v", err)
	}
	return chk
}

func CreatePrayer(
	t *testing.T,
	repo prayer.Repository,
	churchID, personID, subject, body string,
	isPrivate bool,
	createdAt ...time.Time,
) prayer.Request {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	req := prayer.Request{
		ChurchID:  churchID,
		PersonID:  personID,
		Subject:   subject,
		Body:      body,
		IsPrivate: isPrivate,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	req, err := repo.CreateRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("CreatePrayer() failed: %v", err)
	}
	return req
}

func CreateJournalEntry(
	t *testing.T,
	repo journal.Repository,
	churchID, personID, title, body string,
	createdAt ...time.Time,
) journal.Entry {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	entry := journal.Entry{
		ChurchID:  churchID,
		PersonID:  personID,
		Title:     title,
		Body:      body,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	entry, err := repo.CreateEntry(context.Background(), entry)
	if err != nil {
		t.Fatalf("CreateJournalEntry() failed: %v", err)
	}
	return entry
}
