package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	workerLocationKey = "workers:locations"
	workerSeenPrefix  = "workers:seen:"
)

// WorkerLocation is the last reported position of a worker device.
type WorkerLocation struct {
	WorkerID string
	Lat      float64
	Lng      float64
	// LastSeen is when the position was reported. It is zero when the
	// report time is unknown.
	LastSeen time.Time
}

// LocationStore keeps worker positions in a Redis geo index.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a worker's position using GEOADD and records when
// it was reported.
func (s *LocationStore) UpdateLocation(ctx context.Context, workerID string, lat, lng float64) error {
	pipe := s.client.TxPipeline()
	pipe.GeoAdd(ctx, workerLocationKey, &redis.GeoLocation{
		Name:      workerID,
		Longitude: lng,
		Latitude:  lat,
	})
	pipe.Set(ctx, workerSeenPrefix+workerID, time.Now().UnixMilli(), 0)
	_, err := pipe.Exec(ctx)
	return err
}

// GetLocation returns the last position of a worker. found is false when
// the worker never reported one.
func (s *LocationStore) GetLocation(ctx context.Context, workerID string) (WorkerLocation, bool, error) {
	positions, err := s.client.GeoPos(ctx, workerLocationKey, workerID).Result()
	if err != nil {
		return WorkerLocation{}, false, err
	}
	if len(positions) == 0 || positions[0] == nil {
		return WorkerLocation{}, false, nil
	}

	seen, err := s.lastSeen(ctx, workerID)
	if err != nil {
		return WorkerLocation{}, false, err
	}

	return WorkerLocation{
		WorkerID: workerID,
		Lat:      positions[0].Latitude,
		Lng:      positions[0].Longitude,
		LastSeen: seen[0],
	}, true, nil
}

// FindNearbyWorkers returns workers within radiusKm of a point, nearest first.
func (s *LocationStore) FindNearbyWorkers(ctx context.Context, lat, lng, radiusKm float64) ([]WorkerLocation, error) {
	results, err := s.client.GeoRadius(ctx, workerLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Name
	}
	seen, err := s.lastSeen(ctx, ids...)
	if err != nil {
		return nil, err
	}

	locations := make([]WorkerLocation, 0, len(results))
	for i, r := range results {
		locations = append(locations, WorkerLocation{
			WorkerID: r.Name,
			Lat:      r.Latitude,
			Lng:      r.Longitude,
			LastSeen: seen[i],
		})
	}

	return locations, nil
}

// lastSeen reads the report times of workerIDs in order. Missing or
// malformed entries yield the zero time.
func (s *LocationStore) lastSeen(ctx context.Context, workerIDs ...string) ([]time.Time, error) {
	seen := make([]time.Time, len(workerIDs))
	if len(workerIDs) == 0 {
		return seen, nil
	}

	keys := make([]string, len(workerIDs))
	for i, id := range workerIDs {
		keys[i] = workerSeenPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			seen[i] = time.UnixMilli(ms)
		}
	}
	return seen, nil
}

// RemoveLocation removes a worker from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, workerID string) error {
	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, workerLocationKey, workerID)
	pipe.Del(ctx, workerSeenPrefix+workerID)
	_, err := pipe.Exec(ctx)
	return err
}
