package redis

import (
	"context"
	"time"

	"fieldservice/internal/repository"
)

// LocationStoreInterface defines worker location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, workerID string, lat, lng float64) error
	GetLocation(ctx context.Context, workerID string) (WorkerLocation, bool, error)
	FindNearbyWorkers(ctx context.Context, lat, lng, radiusKm float64) ([]WorkerLocation, error)
	RemoveLocation(ctx context.Context, workerID string) error
}

// LockStoreInterface defines per-worker locking.
type LockStoreInterface interface {
	AcquireWorkerLock(ctx context.Context, workerID string, ttl time.Duration) (bool, error)
	ReleaseWorkerLock(ctx context.Context, workerID string) error
}

var (
	_ LocationStoreInterface   = (*LocationStore)(nil)
	_ LockStoreInterface       = (*LockStore)(nil)
	_ repository.KeyValueStore = (*KVStore)(nil)
)
