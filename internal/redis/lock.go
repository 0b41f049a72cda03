package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles short-lived per-worker locks in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func workerLockKey(workerID string) string {
	return fmt.Sprintf("lock:worker:%s", workerID)
}

// AcquireWorkerLock attempts to acquire the lock for a worker.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireWorkerLock(ctx context.Context, workerID string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, workerLockKey(workerID), "1", ttl).Result()
}

// ReleaseWorkerLock releases the lock for a worker.
func (s *LockStore) ReleaseWorkerLock(ctx context.Context, workerID string) error {
	return s.client.Del(ctx, workerLockKey(workerID)).Err()
}
