package repository

import "errors"

var (
	// ErrNotFound is returned when a looked-up entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate")
)
