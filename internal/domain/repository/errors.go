package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an insert violates the
	// accounts email unique constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)
