package repository

import "github.com/projboard/projboard/internal/domain/entity"

// AccountRepository defines the interface for account-related database operations.
type AccountRepository interface {
	Create(a *entity.Account) error
	GetByID(id string) (*entity.Account, error)
	GetByEmail(email string) (*entity.Account, error)
	Update(a *entity.Account) error
}
