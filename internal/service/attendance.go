package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"fieldservice/internal/domain"
	"fieldservice/internal/redis"
	"fieldservice/internal/repository"
)

const (
	attendanceDateLayout = "2006-01-02"
	attendanceLockTTL    = 10 * time.Second
)

// AttendanceService records daily clock-in and clock-out.
type AttendanceService struct {
	docs                repository.DocumentStore
	lockStore           redis.LockStoreInterface
	notificationService *NotificationService
	logger              *zap.Logger
	location            *time.Location
	now                 func() time.Time
}

// NewAttendanceService creates a new AttendanceService. Calendar days are
// computed in loc; nil means UTC.
func NewAttendanceService(
	docs repository.DocumentStore,
	lockStore redis.LockStoreInterface,
	notificationService *NotificationService,
	loc *time.Location,
	logger *zap.Logger,
) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		docs:                docs,
		lockStore:           lockStore,
		notificationService: notificationService,
		logger:              logger.Named("attendance"),
		location:            loc,
		now:                 time.Now,
	}
}

// SetClock replaces time.Now. Used by tests.
func (s *AttendanceService) SetClock(now func() time.Time) {
	s.now = now
}

// AttendanceKey returns the document key for a worker's day.
func AttendanceKey(workerID, date string) string {
	return workerID + ":" + date
}

// ClockIn opens today's attendance record for a worker.
func (s *AttendanceService) ClockIn(ctx context.Context, workerID string) (*domain.AttendanceRecord, error) {
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return nil, ErrInvalidWorkerID
	}

	var record *domain.AttendanceRecord
	err := s.withLock(ctx, workerID, func() error {
		now := s.now().In(s.location)
		date := now.Format(attendanceDateLayout)

		existing, err := s.load(ctx, workerID, date)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if existing != nil {
			return ErrAlreadyClockedIn
		}

		record = &domain.AttendanceRecord{
			WorkerID:  workerID,
			Date:      date,
			Status:    domain.AttendanceClockedIn,
			ClockInAt: now,
		}
		doc, err := domain.EncodeDocument(record)
		if err != nil {
			return err
		}
		return s.docs.SetDocument(ctx, repository.CollectionAttendance, AttendanceKey(workerID, date), doc)
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyClockedIn(ctx, record)
	}
	return record, nil
}

// ClockOut closes today's attendance record and computes the minutes worked.
func (s *AttendanceService) ClockOut(ctx context.Context, workerID string) (*domain.AttendanceRecord, error) {
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return nil, ErrInvalidWorkerID
	}

	var record *domain.AttendanceRecord
	err := s.withLock(ctx, workerID, func() error {
		now := s.now().In(s.location)
		date := now.Format(attendanceDateLayout)

		existing, err := s.load(ctx, workerID, date)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotClockedIn
		}
		if err != nil {
			return err
		}
		if existing.Status != domain.AttendanceClockedIn {
			return ErrNotClockedIn
		}

		existing.Status = domain.AttendanceClockedOut
		existing.ClockOutAt = &now
		existing.WorkedMinutes = int(now.Sub(existing.ClockInAt) / time.Minute)

		fields := domain.Document{
			"status":         string(existing.Status),
			"clock_out_at":   now.Format(time.RFC3339Nano),
			"worked_minutes": existing.WorkedMinutes,
		}
		if err := s.docs.UpdateDocument(ctx, repository.CollectionAttendance, AttendanceKey(workerID, date), fields); err != nil {
			return err
		}
		record = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyClockedOut(ctx, record)
	}
	return record, nil
}

// GetAttendance returns a worker's record for date (YYYY-MM-DD). An empty
// date means today.
func (s *AttendanceService) GetAttendance(ctx context.Context, workerID, date string) (*domain.AttendanceRecord, error) {
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return nil, ErrInvalidWorkerID
	}
	if date == "" {
		date = s.now().In(s.location).Format(attendanceDateLayout)
	} else if _, err := time.ParseInLocation(attendanceDateLayout, date, s.location); err != nil {
		return nil, ErrInvalidDate
	}
	return s.load(ctx, workerID, date)
}

func (s *AttendanceService) load(ctx context.Context, workerID, date string) (*domain.AttendanceRecord, error) {
	doc, err := s.docs.GetDocument(ctx, repository.CollectionAttendance, AttendanceKey(workerID, date))
	if err != nil {
		return nil, err
	}

	var record domain.AttendanceRecord
	if err := domain.DecodeDocument(doc, &record); err != nil {
		return nil, fmt.Errorf("attendance %s: %w", AttendanceKey(workerID, date), err)
	}
	return &record, nil
}

// withLock serializes attendance updates per worker so a double submission
// cannot clock in twice.
func (s *AttendanceService) withLock(ctx context.Context, workerID string, fn func() error) error {
	if s.lockStore == nil {
		return fn()
	}

	acquired, err := s.lockStore.AcquireWorkerLock(ctx, workerID, attendanceLockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrAttendanceLocked
	}
	defer func() {
		if err := s.lockStore.ReleaseWorkerLock(ctx, workerID); err != nil {
			s.logger.Warn("failed to release attendance lock", zap.String("worker_id", workerID), zap.Error(err))
		}
	}()

	return fn()
}
