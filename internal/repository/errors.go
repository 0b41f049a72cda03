package repository

import "errors"

var (
	// ErrNotFound is returned when a document or key does not exist.
	ErrNotFound = errors.New("not found")
)
