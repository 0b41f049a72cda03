package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fieldservice/internal/domain"
	"fieldservice/internal/repository"
)

const (
	// DefaultJobCacheTTL is how long a fetched job record is served locally.
	DefaultJobCacheTTL = time.Hour

	jobCacheKeyPrefix = "job_cache_"
)

// JobCacheKey returns the local store key for a job number.
func JobCacheKey(jobNumber string) string {
	return jobCacheKeyPrefix + jobNumber
}

// JobCache serves job documents from the local key-value store while they
// are fresh and refreshes them from the remote document store otherwise.
//
// Without WithSingleFlight, concurrent fetches of one stale key each reach
// the remote store and each write an entry; the last write wins.
type JobCache struct {
	docs   repository.DocumentStore
	store  repository.KeyValueStore
	logger *zap.Logger
	now    func() time.Time
	ttl    time.Duration
	group  *singleflight.Group
}

// JobCacheOption configures a JobCache.
type JobCacheOption func(*JobCache)

// WithCacheClock replaces time.Now.
func WithCacheClock(now func() time.Time) JobCacheOption {
	return func(c *JobCache) { c.now = now }
}

// WithCacheTTL overrides DefaultJobCacheTTL.
func WithCacheTTL(ttl time.Duration) JobCacheOption {
	return func(c *JobCache) { c.ttl = ttl }
}

// WithSingleFlight collapses concurrent remote fetches of the same job
// number into one call. Waiting callers share the first caller's result.
func WithSingleFlight() JobCacheOption {
	return func(c *JobCache) { c.group = &singleflight.Group{} }
}

// NewJobCache creates a new JobCache.
func NewJobCache(docs repository.DocumentStore, store repository.KeyValueStore, logger *zap.Logger, opts ...JobCacheOption) *JobCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &JobCache{
		docs:   docs,
		store:  store,
		logger: logger.Named("job_cache"),
		now:    time.Now,
		ttl:    DefaultJobCacheTTL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type remoteJob struct {
	record domain.JobRecord
	found  bool
}

// Fetch returns the job record for jobNumber. found is false when the
// remote store has no such document; nothing is cached in that case.
// Local store failures never fail a fetch.
func (c *JobCache) Fetch(ctx context.Context, jobNumber string) (domain.JobRecord, bool, error) {
	if jobNumber == "" {
		return nil, false, ErrInvalidJobNumber
	}

	if entry, ok := c.readLocal(ctx, jobNumber); ok && entry.Fresh(c.now(), c.ttl) {
		return entry.Data, true, nil
	}

	if c.group == nil {
		res, err := c.fetchRemote(ctx, jobNumber)
		return res.record, res.found, err
	}

	v, err, _ := c.group.Do(jobNumber, func() (any, error) {
		return c.fetchRemote(ctx, jobNumber)
	})
	res, _ := v.(remoteJob)
	return res.record, res.found, err
}

// Invalidate removes the local entry for jobNumber so the next Fetch goes
// to the remote store.
func (c *JobCache) Invalidate(ctx context.Context, jobNumber string) error {
	if jobNumber == "" {
		return ErrInvalidJobNumber
	}
	if err := c.store.Remove(ctx, JobCacheKey(jobNumber)); err != nil {
		return fmt.Errorf("invalidate job %s: %w", jobNumber, err)
	}
	return nil
}

// Store overwrites the local entry for jobNumber with doc, stamped now.
// A write failure is logged, not returned.
func (c *JobCache) Store(ctx context.Context, jobNumber string, doc domain.JobRecord) {
	if jobNumber == "" || doc == nil {
		return
	}
	c.writeLocal(ctx, jobNumber, doc)
}

func (c *JobCache) fetchRemote(ctx context.Context, jobNumber string) (remoteJob, error) {
	doc, err := c.docs.GetDocument(ctx, repository.CollectionJobs, jobNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return remoteJob{}, nil
		}
		return remoteJob{}, fmt.Errorf("fetch job %s: %w", jobNumber, err)
	}

	c.writeLocal(ctx, jobNumber, doc)
	return remoteJob{record: doc, found: true}, nil
}

// readLocal returns the cached entry. Read failures and undecodable
// entries are treated as a miss.
func (c *JobCache) readLocal(ctx context.Context, jobNumber string) (domain.CacheEntry, bool) {
	raw, found, err := c.store.Get(ctx, JobCacheKey(jobNumber))
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("job_number", jobNumber), zap.Error(err))
		return domain.CacheEntry{}, false
	}
	if !found {
		return domain.CacheEntry{}, false
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Data == nil {
		c.logger.Warn("discarding corrupt cache entry", zap.String("job_number", jobNumber), zap.Error(err))
		return domain.CacheEntry{}, false
	}
	return entry, true
}

func (c *JobCache) writeLocal(ctx context.Context, jobNumber string, doc domain.JobRecord) {
	entry := domain.CacheEntry{
		Key:      jobNumber,
		Data:     doc,
		StoredAt: c.now().UnixMilli(),
	}

	data, err := json.Marshal(entry)
	if err == nil {
		err = c.store.Set(ctx, JobCacheKey(jobNumber), string(data))
	}
	if err != nil {
		c.logger.Warn("cache write failed", zap.String("job_number", jobNumber), zap.Error(err))
	}
}
