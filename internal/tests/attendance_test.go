package tests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"fieldservice/internal/domain"
	"fieldservice/internal/repository"
	"fieldservice/internal/service"
)

func newAttendanceFixture(t *testing.T) (*service.AttendanceService, *MockDocumentStore, *MockLockStore, *FakeClock) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Singapore")
	if err != nil {
		loc = time.FixedZone("SGT", 8*60*60)
	}

	docs := NewMockDocumentStore()
	locks := NewMockLockStore()
	// 23:30 UTC on 1 March is 07:30 on 2 March in Singapore.
	clock := NewFakeClock(time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC))

	svc := service.NewAttendanceService(docs, locks, service.NewNotificationService(zap.NewNop()), loc, zap.NewNop())
	svc.SetClock(clock.Now)
	return svc, docs, locks, clock
}

func TestAttendance_ClockInAndOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, docs, locks, clock := newAttendanceFixture(t)

	in, err := svc.ClockIn(ctx, "w-1")
	if err != nil {
		t.Fatalf("clock in: %v", err)
	}
	if in.Date != "2026-03-02" {
		t.Errorf("expected local date 2026-03-02, got %s", in.Date)
	}
	if in.Status != domain.AttendanceClockedIn {
		t.Errorf("expected CLOCKED_IN, got %s", in.Status)
	}

	stored := docs.Doc(repository.CollectionAttendance, service.AttendanceKey("w-1", "2026-03-02"))
	if stored.String("status") != string(domain.AttendanceClockedIn) {
		t.Errorf("expected stored record, got %v", stored)
	}

	clock.Advance(8*time.Hour + 45*time.Minute + 30*time.Second)

	out, err := svc.ClockOut(ctx, "w-1")
	if err != nil {
		t.Fatalf("clock out: %v", err)
	}
	if out.Status != domain.AttendanceClockedOut {
		t.Errorf("expected CLOCKED_OUT, got %s", out.Status)
	}
	if out.WorkedMinutes != 525 {
		t.Errorf("expected 525 worked minutes, got %d", out.WorkedMinutes)
	}
	if out.ClockOutAt == nil {
		t.Error("expected clock out time")
	}

	got, err := svc.GetAttendance(ctx, "w-1", "2026-03-02")
	if err != nil {
		t.Fatalf("get attendance: %v", err)
	}
	if got.Status != domain.AttendanceClockedOut || got.WorkedMinutes != 525 {
		t.Errorf("unexpected stored record: %+v", got)
	}

	if atomic.LoadInt32(&locks.AcquireCallCount) != atomic.LoadInt32(&locks.ReleaseCallCount) {
		t.Error("expected every lock to be released")
	}
}

func TestAttendance_DoubleClockIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _, _ := newAttendanceFixture(t)

	if _, err := svc.ClockIn(ctx, "w-1"); err != nil {
		t.Fatalf("clock in: %v", err)
	}
	if _, err := svc.ClockIn(ctx, "w-1"); !errors.Is(err, service.ErrAlreadyClockedIn) {
		t.Errorf("expected ErrAlreadyClockedIn, got %v", err)
	}
}

func TestAttendance_ClockOutWithoutClockIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _, _ := newAttendanceFixture(t)

	if _, err := svc.ClockOut(ctx, "w-1"); !errors.Is(err, service.ErrNotClockedIn) {
		t.Errorf("expected ErrNotClockedIn, got %v", err)
	}

	svc.ClockIn(ctx, "w-1")
	svc.ClockOut(ctx, "w-1")
	if _, err := svc.ClockOut(ctx, "w-1"); !errors.Is(err, service.ErrNotClockedIn) {
		t.Errorf("expected ErrNotClockedIn on second clock out, got %v", err)
	}
}

func TestAttendance_LockHeld(t *testing.T) {
	t.Parallel()
	svc, docs, locks, _ := newAttendanceFixture(t)
	locks.Hold("w-1")

	if _, err := svc.ClockIn(context.Background(), "w-1"); !errors.Is(err, service.ErrAttendanceLocked) {
		t.Errorf("expected ErrAttendanceLocked, got %v", err)
	}
	if atomic.LoadInt32(&docs.SetCallCount) != 0 {
		t.Error("expected no write while locked")
	}
}

func TestAttendance_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _, _ := newAttendanceFixture(t)

	testCases := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{
			name:    "clock in without worker",
			call:    func() error { _, err := svc.ClockIn(ctx, ""); return err },
			wantErr: service.ErrInvalidWorkerID,
		},
		{
			name:    "bad date",
			call:    func() error { _, err := svc.GetAttendance(ctx, "w-1", "02/03/2026"); return err },
			wantErr: service.ErrInvalidDate,
		},
		{
			name:    "no record",
			call:    func() error { _, err := svc.GetAttendance(ctx, "w-1", ""); return err },
			wantErr: repository.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
