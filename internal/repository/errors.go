package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert collides with an existing row
	ErrDuplicate = errors.New("duplicate entity")

	// ErrConflict is returned when a guarded update matched no rows
	ErrConflict = errors.New("conflict: guarded update rejected")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
