package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projboard/projboard/internal/domain/entity"
	"github.com/projboard/projboard/internal/domain/repository"
)

const uniqueViolation = "23505"

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(a *entity.Account) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash, name, phone, avatar_url, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, a.Email, a.Password, a.Name, a.Phone, a.AvatarURL, a.Role)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetByID(id string) (*entity.Account, error) {
	return r.get(`
		SELECT id, email, password_hash, name, phone, avatar_url, role, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id)
}

func (r *AccountRepository) GetByEmail(email string) (*entity.Account, error) {
	return r.get(`
		SELECT id, email, password_hash, name, phone, avatar_url, role, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`, email)
}

func (r *AccountRepository) get(query string, arg any) (*entity.Account, error) {
	ctx := context.Background()
	a := &entity.Account{}

	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&a.ID, &a.Email, &a.Password, &a.Name, &a.Phone,
		&a.AvatarURL, &a.Role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Update(a *entity.Account) error {
	ctx := context.Background()
	a.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET name = $1, phone = $2, avatar_url = $3, updated_at = $4
		WHERE id = $5
	`, a.Name, a.Phone, a.AvatarURL, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
