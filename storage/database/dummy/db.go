// Package dummydb provides in-memory repositories for tests and local hacking.
package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/church"
	"github.com/shepherdcrm/shepherd/core/journal"
	"github.com/shepherdcrm/shepherd/core/person"
	"github.com/shepherdcrm/shepherd/core/prayer"
	"github.com/shepherdcrm/shepherd/core/user"
)

type (
	DB struct {
		noopExecutor

		church  *churchTable
		user    *userTable
		person  *personTable
		checkin *checkinTable
		journal *journalTable
		prayer  *prayerTable
	}

	churchTable struct {
		sync.RWMutex
		table map[string]*church.Church
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	personTable struct {
		sync.RWMutex
		table map[string]*person.Person
	}

	checkinTable struct {
		sync.RWMutex
		table map[string]*person.Checkin
	}

	journalTable struct {
		sync.RWMutex
		table map[string]*journal.Entry
	}

	prayerTable struct {
		sync.RWMutex
		table map[string]*prayer.Request
	}
)

var _ core.DB = (*DB)(nil) // interface compliance check

func Open() (*DB, error) {
	db := &DB{
		church:  &churchTable{table: make(map[string]*church.Church)},
		user:    &userTable{table: make(map[string]*user.User)},
		person:  &personTable{table: make(map[string]*person.Person)},
		checkin: &checkinTable{table: make(map[string]*person.Checkin)},
		journal: &journalTable{table: make(map[string]*journal.Entry)},
		prayer:  &prayerTable{table: make(map[string]*prayer.Request)},
	}
	return db, nil
}

// Reset clears all tables. Tests call it to start from a clean slate.
func (db *DB) Reset() {
	db.church.Lock()
	db.church.table = make(map[string]*church.Church)
	db.church.Unlock()

	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.person.Lock()
	db.person.table = make(map[string]*person.Person)
	db.person.Unlock()

	db.checkin.Lock()
	db.checkin.table = make(map[string]*person.Checkin)
	db.checkin.Unlock()

	db.journal.Lock()
	db.journal.table = make(map[string]*journal.Entry)
	db.journal.Unlock()

	db.prayer.Lock()
	db.prayer.table = make(map[string]*prayer.Request)
	db.prayer.Unlock()
}

// The repositories write straight to the in-memory tables, so transactions are no-ops.
func (db *DB) Beginx() (core.DBTransactor, error) {
	return noopTx{}, nil
}

func (db *DB) BeginTxx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	return noopTx{}, nil
}

// noopExecutor satisfies core.DBExecutor; the repositories never call it.
type noopExecutor struct{}

func (noopExecutor) DriverName() string {
	return "dummy"
}

func (noopExecutor) Rebind(query string) string {
	return query
}

func (noopExecutor) BindNamed(query string, arg interface{}) (string, []interface{}, error) {
	return query, nil, nil
}

func (noopExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (noopExecutor) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, nil
}

func (noopExecutor) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return nil
}

func (noopExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

type noopTx struct {
	noopExecutor
}

func (noopTx) Commit() error {
	return nil
}

func (noopTx) Rollback() error {
	return nil
}
