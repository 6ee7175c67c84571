package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/projboard/projboard/internal/domain/entity"
)

const keyListings = "listings"

// ListingStore caches the listing feed as a single JSON document in the
// kv table. All operations take the store mutex, so concurrent appends
// and removals never interleave their read-modify-write cycles.
type ListingStore struct {
	db *sql.DB
	mu sync.Mutex
}

func NewListingStore(db *sql.DB) *ListingStore {
	return &ListingStore{db: db}
}

func (s *ListingStore) load(ctx context.Context) ([]entity.Listing, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, keyListings).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	var listings []entity.Listing
	if err := json.Unmarshal(raw, &listings); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	return listings, nil
}

func (s *ListingStore) save(ctx context.Context, listings []entity.Listing) error {
	raw, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("encode listings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, keyListings, raw)
	if err != nil {
		return fmt.Errorf("save listings: %w", err)
	}
	return nil
}

// LoadAll returns every cached listing. A missing cache is an empty
// slice, not an error.
func (s *ListingStore) LoadAll(ctx context.Context) ([]entity.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// ReplaceAll overwrites the cache with a fresh feed from the server.
func (s *ListingStore) ReplaceAll(ctx context.Context, listings []entity.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, listings)
}

// Append adds a listing to the cache. A listing without an ID gets a
// millisecond-timestamp one, which keeps newest-first ordering cheap.
func (s *ListingStore) Append(ctx context.Context, l entity.Listing) (entity.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listings, err := s.load(ctx)
	if err != nil {
		return entity.Listing{}, err
	}
	if l.ID == "" {
		id := time.Now().UnixMilli()
		for hasID(listings, strconv.FormatInt(id, 10)) {
			id++
		}
		l.ID = strconv.FormatInt(id, 10)
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	listings = append(listings, l)
	if err := s.save(ctx, listings); err != nil {
		return entity.Listing{}, err
	}
	return l, nil
}

func hasID(listings []entity.Listing, id string) bool {
	for _, l := range listings {
		if l.ID == id {
			return true
		}
	}
	return false
}

// Remove drops the listing with the given id. Removing an unknown id is
// a no-op.
func (s *ListingStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listings, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := listings[:0]
	for _, l := range listings {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(listings) {
		return nil
	}
	return s.save(ctx, kept)
}
