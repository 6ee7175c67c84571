package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	keySessionName  = "session:name"
	keySessionEmail = "session:email"
	keySessionPhone = "session:phone"
)

// Session is the locally persisted signed-in account. It survives app
// restarts until ClearSession is called.
type Session struct {
	Name  string
	Email string
	Phone string
}

// SessionStore keeps the active session and per-account avatars in the
// kv table.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return value, nil
}

func (s *SessionStore) del(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv del %s: %w", key, err)
	}
	return nil
}

// SaveSession records the signed-in account, replacing any previous one.
func (s *SessionStore) SaveSession(ctx context.Context, sess Session) error {
	if err := s.put(ctx, keySessionName, []byte(sess.Name)); err != nil {
		return err
	}
	if err := s.put(ctx, keySessionEmail, []byte(sess.Email)); err != nil {
		return err
	}
	return s.put(ctx, keySessionPhone, []byte(sess.Phone))
}

// LoadSession returns the active session. Absent keys read back as
// zero values, so a signed-out state is an all-empty Session, not an
// error. Callers check Email to tell the two apart.
func (s *SessionStore) LoadSession(ctx context.Context) (*Session, error) {
	email, err := s.get(ctx, keySessionEmail)
	if errors.Is(err, ErrNotFound) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, err
	}
	name, _ := s.get(ctx, keySessionName)
	phone, _ := s.get(ctx, keySessionPhone)
	return &Session{Name: string(name), Email: string(email), Phone: string(phone)}, nil
}

// ClearSession signs the active account out and drops its cached avatar.
func (s *SessionStore) ClearSession(ctx context.Context) error {
	if email, err := s.get(ctx, keySessionEmail); err == nil {
		if err := s.del(ctx, avatarKey(string(email))); err != nil {
			return err
		}
	}
	for _, key := range []string{keySessionName, keySessionEmail, keySessionPhone} {
		if err := s.del(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func avatarKey(email string) string { return "avatar:" + email }

// SaveAvatar stores the avatar reference (URL or local path) for an
// account. At most one per email: saving overwrites.
func (s *SessionStore) SaveAvatar(ctx context.Context, email, ref string) error {
	return s.put(ctx, avatarKey(email), []byte(ref))
}

// LoadAvatar returns the stored avatar reference. A missing avatar is
// an empty string, not an error.
func (s *SessionStore) LoadAvatar(ctx context.Context, email string) (string, error) {
	ref, err := s.get(ctx, avatarKey(email))
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(ref), nil
}
