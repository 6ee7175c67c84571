package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projboard/projboard/internal/domain/entity"
	"github.com/projboard/projboard/internal/domain/repository"
)

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

const listingColumns = `
	l.id, l.title, l.description, l.display_price, l.price, l.party_size,
	l.owner_id, a.name, a.email, a.phone, a.avatar_url, l.created_at`

func (r *ListingRepository) Create(l *entity.Listing) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO listings (title, description, display_price, price, party_size, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, l.Title, l.Description, l.DisplayPrice, l.Price, l.PartySize, l.OwnerID)

	return row.Scan(&l.ID, &l.CreatedAt)
}

func (r *ListingRepository) GetByID(id string) (*entity.Listing, error) {
	ctx := context.Background()
	l := &entity.Listing{}

	row := r.pool.QueryRow(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		JOIN accounts a ON a.id = l.owner_id
		WHERE l.id = $1
	`, id)

	if err := scanListing(row, l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *ListingRepository) List() ([]entity.Listing, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		JOIN accounts a ON a.id = l.owner_id
		ORDER BY l.created_at ASC, l.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Listing, 0)
	for rows.Next() {
		var l entity.Listing
		if err := scanListing(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *ListingRepository) Delete(id string) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanListing(row pgx.Row, l *entity.Listing) error {
	return row.Scan(&l.ID, &l.Title, &l.Description, &l.DisplayPrice, &l.Price,
		&l.PartySize, &l.OwnerID, &l.OwnerName, &l.OwnerEmail, &l.OwnerPhone,
		&l.OwnerAvatar, &l.CreatedAt)
}

var _ repository.ListingRepository = (*ListingRepository)(nil)
