package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fieldservice/internal/domain"
	"fieldservice/internal/repository"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		key        TEXT NOT NULL,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, key)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_updated_at_idx
		ON documents (collection, updated_at DESC)`,
}

// EnsureSchema creates the documents table and its index if missing.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schema {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure documents schema: %w", err)
		}
	}
	return nil
}

// DocumentStore is a PostgreSQL implementation of repository.DocumentStore.
// Each document is one JSONB row keyed by (collection, key).
type DocumentStore struct {
	q         Querier
	forUpdate bool
}

// NewDocumentStore creates a new PostgreSQL document store.
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{q: db}
}

// NewDocumentStoreWithTx creates a document store using a transaction.
// GetDocument takes a row lock held until the transaction ends.
func NewDocumentStoreWithTx(tx *sql.Tx) *DocumentStore {
	return &DocumentStore{q: tx, forUpdate: true}
}

// GetDocument retrieves a document.
func (s *DocumentStore) GetDocument(ctx context.Context, collection, key string) (domain.Document, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND key = $2`
	if s.forUpdate {
		query += ` FOR UPDATE`
	}

	var raw []byte
	err := s.q.QueryRowContext(ctx, query, collection, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, key, err)
	}
	return doc, nil
}

// SetDocument creates or replaces a document.
func (s *DocumentStore) SetDocument(ctx context.Context, collection, key string, doc domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (collection, key, data, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (collection, key)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`

	_, err = s.q.ExecContext(ctx, query, collection, key, string(data))
	return err
}

// UpdateDocument merges top-level fields into an existing document.
func (s *DocumentStore) UpdateDocument(ctx context.Context, collection, key string, fields domain.Document) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	query := `
		UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND key = $2
	`

	result, err := s.q.ExecContext(ctx, query, collection, key, string(data))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Transactor implements repository.DocumentTransactor over a connection pool.
type Transactor struct {
	db *sql.DB
}

// NewTransactor creates a new Transactor.
func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTransaction runs fn in a transaction, committing when fn returns nil.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(store repository.DocumentStore) error) error {
	return InTx(ctx, t.db, func(tx *sql.Tx) error {
		return fn(NewDocumentStoreWithTx(tx))
	})
}

var (
	_ repository.DocumentStore      = (*DocumentStore)(nil)
	_ repository.DocumentTransactor = (*Transactor)(nil)
)
