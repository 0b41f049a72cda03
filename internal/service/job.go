package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"fieldservice/internal/domain"
	"fieldservice/internal/repository"
)

// JobService handles job reads and completion.
type JobService struct {
	docs                repository.DocumentStore
	tx                  repository.DocumentTransactor
	cache               *JobCache
	notificationService *NotificationService
	logger              *zap.Logger
	now                 func() time.Time
}

// NewJobService creates a new JobService.
func NewJobService(
	docs repository.DocumentStore,
	cache *JobCache,
	notificationService *NotificationService,
	logger *zap.Logger,
) *JobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{
		docs:                docs,
		cache:               cache,
		notificationService: notificationService,
		logger:              logger.Named("job"),
		now:                 time.Now,
	}
}

// SetTransactor makes CompleteJob lock the job row for its read-check-update.
func (s *JobService) SetTransactor(tx repository.DocumentTransactor) {
	s.tx = tx
}

// GetJob returns a job through the cache, or repository.ErrNotFound.
func (s *JobService) GetJob(ctx context.Context, jobNumber string) (domain.JobRecord, error) {
	job, found, err := s.cache.Fetch(ctx, strings.TrimSpace(jobNumber))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.ErrNotFound
	}
	return job, nil
}

// InvalidateJob drops the cached copy of a job.
func (s *JobService) InvalidateJob(ctx context.Context, jobNumber string) error {
	return s.cache.Invalidate(ctx, strings.TrimSpace(jobNumber))
}

// CompleteJobRequest contains the parameters for completing a job.
type CompleteJobRequest struct {
	JobNumber string
	Remarks   string
}

// CompleteJob marks a job completed in the remote store, drops the cached
// copy and returns the refreshed record.
func (s *JobService) CompleteJob(ctx context.Context, req CompleteJobRequest) (domain.JobRecord, error) {
	jobNumber := strings.TrimSpace(req.JobNumber)
	if jobNumber == "" {
		return nil, ErrInvalidJobNumber
	}

	fields := domain.Document{
		"status":       string(domain.JobStatusCompleted),
		"completed_at": s.now().UTC().Format(time.RFC3339),
		"remarks":      req.Remarks,
	}

	var current domain.Document
	markCompleted := func(docs repository.DocumentStore) error {
		var err error
		current, err = markJobCompleted(ctx, docs, jobNumber, fields)
		return err
	}

	var err error
	if s.tx != nil {
		err = s.tx.WithinTransaction(ctx, markCompleted)
	} else {
		err = markCompleted(s.docs)
	}
	if err != nil {
		return nil, err
	}

	job := s.refreshCompleted(ctx, jobNumber, mergeDocument(current, fields))

	if s.notificationService != nil {
		_ = s.notificationService.NotifyJobCompleted(ctx, jobNumber, job)
	}

	s.logger.Info("job completed", zap.String("job_number", jobNumber))
	return job, nil
}

// refreshCompleted returns the completed job and leaves the cache holding
// it. If the stale entry cannot be removed it is overwritten with merged,
// and merged is returned without reading the cache.
func (s *JobService) refreshCompleted(ctx context.Context, jobNumber string, merged domain.JobRecord) domain.JobRecord {
	if err := s.cache.Invalidate(ctx, jobNumber); err != nil {
		s.logger.Warn("failed to invalidate completed job", zap.String("job_number", jobNumber), zap.Error(err))
		s.cache.Store(ctx, jobNumber, merged)
		return merged
	}

	job, found, err := s.cache.Fetch(ctx, jobNumber)
	if err != nil || !found {
		// The update succeeded; fall back to the merged local view.
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("failed to refresh completed job", zap.String("job_number", jobNumber), zap.Error(err))
		}
		return merged
	}
	return job
}

// markJobCompleted reads the job from the remote store, never the cache,
// since a cached copy may predate another device's completion.
func markJobCompleted(ctx context.Context, docs repository.DocumentStore, jobNumber string, fields domain.Document) (domain.Document, error) {
	current, err := docs.GetDocument(ctx, repository.CollectionJobs, jobNumber)
	if err != nil {
		return nil, err
	}
	if domain.JobStatusOf(current) == domain.JobStatusCompleted {
		return nil, ErrJobAlreadyCompleted
	}
	if err := docs.UpdateDocument(ctx, repository.CollectionJobs, jobNumber, fields); err != nil {
		return nil, fmt.Errorf("complete job %s: %w", jobNumber, err)
	}
	return current, nil
}

func mergeDocument(base, fields domain.Document) domain.Document {
	merged := make(domain.Document, len(base)+len(fields))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}
