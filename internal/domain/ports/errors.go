// Package ports defines the interfaces the domain depends on.
package ports

import "errors"

var (
	// ErrNotFound is returned by update and delete operations on an absent id.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint is violated.
	ErrConflict = errors.New("record already exists")
)
