package repository

import "github.com/projboard/projboard/internal/domain/entity"

// ListingRepository defines the interface for listing persistence.
// List returns listings in insertion order (oldest first).
type ListingRepository interface {
	Create(l *entity.Listing) error
	GetByID(id string) (*entity.Listing, error)
	List() ([]entity.Listing, error)
	Delete(id string) error
}
