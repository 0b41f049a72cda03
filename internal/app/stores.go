package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"fieldservice/internal/config"
	internalRedis "fieldservice/internal/redis"
	"fieldservice/internal/repository"
	"fieldservice/internal/repository/sqlite"
)

// NewKeyValueStore returns the job cache's local store for the configured
// backend. The returned closer releases backend resources owned by the
// store; it is a no-op for Redis, whose client is shared.
func NewKeyValueStore(ctx context.Context, cfg config.CacheConfig, redisClient *redis.Client) (repository.KeyValueStore, func() error, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis, "":
		return internalRedis.NewKVStore(redisClient, cfg.KeyPrefix), func() error { return nil }, nil

	case config.CacheBackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := sqlite.NewKVStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
