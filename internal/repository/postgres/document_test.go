package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldservice/internal/domain"
	"fieldservice/internal/repository"
)

// openTestDB connects to POSTGRES_DSN and returns a collection name unique
// to the test. Rows in that collection are removed on cleanup.
func openTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, EnsureSchema(ctx, db))

	collection := "test_" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), `DELETE FROM documents WHERE collection = $1`, collection)
	})
	return db, collection
}

func TestDocumentStore_SetGetAndMerge(t *testing.T) {
	db, collection := openTestDB(t)
	ctx := context.Background()
	store := NewDocumentStore(db)

	_, err := store.GetDocument(ctx, collection, "J-100")
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	require.NoError(t, store.SetDocument(ctx, collection, "J-100", domain.Document{
		"status":  "ASSIGNED",
		"address": "1 Marina Boulevard",
	}))

	require.NoError(t, store.UpdateDocument(ctx, collection, "J-100", domain.Document{
		"status":  "COMPLETED",
		"remarks": "replaced valve",
	}))

	doc, err := store.GetDocument(ctx, collection, "J-100")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", doc.String("status"))
	assert.Equal(t, "replaced valve", doc.String("remarks"))
	// Fields absent from the update survive the merge.
	assert.Equal(t, "1 Marina Boulevard", doc.String("address"))

	// SetDocument replaces the whole document.
	require.NoError(t, store.SetDocument(ctx, collection, "J-100", domain.Document{"status": "ASSIGNED"}))
	doc, err = store.GetDocument(ctx, collection, "J-100")
	require.NoError(t, err)
	assert.Equal(t, "", doc.String("address"))
}

func TestDocumentStore_UpdateMissingIsNotFound(t *testing.T) {
	db, collection := openTestDB(t)
	store := NewDocumentStore(db)

	err := store.UpdateDocument(context.Background(), collection, "J-404", domain.Document{"status": "COMPLETED"})
	assert.True(t, errors.Is(err, repository.ErrNotFound), "got %v", err)
}

func TestTransactor_CommitAndRollback(t *testing.T) {
	db, collection := openTestDB(t)
	ctx := context.Background()
	store := NewDocumentStore(db)
	tx := NewTransactor(db)

	require.NoError(t, store.SetDocument(ctx, collection, "J-100", domain.Document{"status": "ASSIGNED"}))

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(docs repository.DocumentStore) error {
		if err := docs.UpdateDocument(ctx, collection, "J-100", domain.Document{"status": "IN_PROGRESS"}); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	doc, err := store.GetDocument(ctx, collection, "J-100")
	require.NoError(t, err)
	assert.Equal(t, "ASSIGNED", doc.String("status"), "rolled back update must not persist")

	require.NoError(t, tx.WithinTransaction(ctx, func(docs repository.DocumentStore) error {
		return docs.UpdateDocument(ctx, collection, "J-100", domain.Document{"status": "COMPLETED"})
	}))

	doc, err = store.GetDocument(ctx, collection, "J-100")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", doc.String("status"))
}

func TestTransactor_GetDocumentLocksRow(t *testing.T) {
	db, collection := openTestDB(t)
	ctx := context.Background()
	store := NewDocumentStore(db)

	require.NoError(t, store.SetDocument(ctx, collection, "J-100", domain.Document{"status": "ASSIGNED"}))

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- NewTransactor(db).WithinTransaction(ctx, func(docs repository.DocumentStore) error {
			if _, err := docs.GetDocument(ctx, collection, "J-100"); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()

	select {
	case <-locked:
	case err := <-done:
		t.Fatalf("transaction ended early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("transaction did not take the row lock")
	}

	// A writer outside the transaction blocks on the row lock.
	blockedCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	err := store.UpdateDocument(blockedCtx, collection, "J-100", domain.Document{"status": "IN_PROGRESS"})
	cancel()
	assert.Error(t, err, "update should wait for the row lock")

	close(release)
	require.NoError(t, <-done)

	require.NoError(t, store.UpdateDocument(ctx, collection, "J-100", domain.Document{"status": "IN_PROGRESS"}))
	doc, err := store.GetDocument(ctx, collection, "J-100")
	require.NoError(t, err)
	assert.Equal(t, "IN_PROGRESS", doc.String("status"))
}
