package entity

import (
	"time"
)

// Account is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in Password field.
type Account struct {
	ID        string
	Email     string
	Password  string
	Name      string
	Phone     string
	AvatarURL string
	Role      string // "user" unless promoted out of band
	CreatedAt time.Time
	UpdatedAt time.Time
}
