package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrVersionConflict is returned when an update loses an optimistic
	// concurrency race and the caller should re-read the row.
	ErrVersionConflict = errors.New("version conflict")
)
