package repository

import (
	"context"

	"fieldservice/internal/domain"
)

// Collections used by the services.
const (
	CollectionJobs       = "jobs"
	CollectionAttendance = "attendance"
)

// DocumentStore is the remote system of record for business documents.
type DocumentStore interface {
	// GetDocument returns the document at collection/key, or ErrNotFound.
	GetDocument(ctx context.Context, collection, key string) (domain.Document, error)

	// SetDocument creates or replaces the document at collection/key.
	SetDocument(ctx context.Context, collection, key string, doc domain.Document) error

	// UpdateDocument merges fields into an existing document.
	// Returns ErrNotFound if the document does not exist.
	UpdateDocument(ctx context.Context, collection, key string, fields domain.Document) error
}

// DocumentTransactor runs fn against a store bound to a single transaction.
// Reads made through that store lock the rows they return until fn ends.
type DocumentTransactor interface {
	WithinTransaction(ctx context.Context, fn func(store DocumentStore) error) error
}
