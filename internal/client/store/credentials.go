package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/projboard/projboard/pkg/helpers"
)

// emailPattern is the same basic local@domain.tld check the screens use.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Account is a locally registered account. Password holds a bcrypt
// hash, never the plain text.
type Account struct {
	ID       int64
	Name     string
	Email    string
	Password string
	Phone    string
}

// CredentialStore is the on-device account table.
type CredentialStore struct {
	db *sql.DB
}

func NewCredentialStore(db *sql.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Create registers an account and returns its row id. The email must be
// unique; the password is stored as a bcrypt hash.
func (s *CredentialStore) Create(ctx context.Context, name, email, password, phone string) (int64, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return 0, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return 0, fmt.Errorf("%w: malformed email", ErrValidation)
	}

	// Check first so the duplicate error is deterministic rather than
	// driver-specific.
	if _, err := s.GetByEmail(ctx, email); err == nil {
		return 0, ErrDuplicateEmail
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (name, email, password, phone) VALUES (?, ?, ?, ?)
	`, name, email, hash, phone)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	return id, nil
}

// GetByEmail looks an account up by email.
func (s *CredentialStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	a := &Account{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password, COALESCE(phone, '') FROM accounts WHERE email = ?
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&a.ID, &a.Name, &a.Email, &a.Password, &a.Phone)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// Authenticate verifies email+password against the stored hash. Both an
// unknown email and a wrong password return ErrNotFound so callers can
// only show a generic failure.
func (s *CredentialStore) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	a, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(a.Password, password) {
		return nil, ErrNotFound
	}
	return a, nil
}
