package dataset

import "errors"

var (
	// ErrNotFound indicates the dataset doesn't exist.
	ErrNotFound = errors.New("dataset not found")
	// ErrNotOwner indicates the caller does not own the dataset.
	ErrNotOwner = errors.New("caller is not the dataset owner")
	// ErrInvalidInput indicates invalid dataset input.
	ErrInvalidInput = errors.New("invalid dataset input")
)
