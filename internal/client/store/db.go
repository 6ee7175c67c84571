// Package store implements the device-local persistence layer: the
// credential store, the session key-value store, and the cached listing
// feed. Everything lives in a single SQLite database so one file holds
// the whole device state.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	// ErrValidation is returned for malformed or missing input.
	ErrValidation = errors.New("invalid input")
	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("not found")
)

// Stores bundles the repositories backed by one device database.
type Stores struct {
	Credentials *CredentialStore
	Session     *SessionStore
	Listings    *ListingStore

	db *sql.DB
}

// Open opens (creating if needed) the device database at dsn and runs
// embedded migrations. Use ":memory:" for tests.
func Open(ctx context.Context, dsn string) (*Stores, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open device db: %w", err)
	}
	// One connection: SQLite is a local file, and ":memory:" databases
	// are per-connection.
	db.SetMaxOpenConns(1)
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Stores{
		Credentials: NewCredentialStore(db),
		Session:     NewSessionStore(db),
		Listings:    NewListingStore(db),
		db:          db,
	}, nil
}

func (s *Stores) Close() error {
	return s.db.Close()
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run device migrations: %w", err)
	}
	return nil
}
