package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// DefaultKVPrefix namespaces local cache keys in a shared Redis.
const DefaultKVPrefix = "kv:"

// KVStore implements repository.KeyValueStore on Redis strings.
// Keys never expire; freshness is the caller's concern.
type KVStore struct {
	client *redis.Client
	prefix string
}

// NewKVStore creates a new KVStore. An empty prefix uses DefaultKVPrefix.
func NewKVStore(client *redis.Client, prefix string) *KVStore {
	if prefix == "" {
		prefix = DefaultKVPrefix
	}
	return &KVStore{client: client, prefix: prefix}
}

// Get retrieves a value. A missing key is not an error.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set stores a value without expiry.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

// Remove deletes a key.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
