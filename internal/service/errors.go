package service

import "errors"

var (
	// ErrInvalidJobNumber is returned when a job number is empty.
	ErrInvalidJobNumber = errors.New("invalid job number")

	// ErrInvalidWorkerID is returned when a worker ID is empty.
	ErrInvalidWorkerID = errors.New("invalid worker id")

	// ErrInvalidLocation is returned when a reported position is not a valid coordinate.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidDate is returned when an attendance date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrJobAlreadyCompleted is returned when completing a completed job.
	ErrJobAlreadyCompleted = errors.New("job already completed")

	// ErrAlreadyClockedIn is returned when a worker clocks in twice on one day.
	ErrAlreadyClockedIn = errors.New("worker already clocked in today")

	// ErrNotClockedIn is returned when clocking out without an open clock-in.
	ErrNotClockedIn = errors.New("worker not clocked in")

	// ErrAttendanceLocked is returned when another attendance update for the
	// same worker is in flight.
	ErrAttendanceLocked = errors.New("attendance update already in progress")

	// ErrNoActiveSession is returned when a worker has no navigation to act on.
	ErrNoActiveSession = errors.New("no active navigation session")

	// ErrServiceClosed is returned after Shutdown.
	ErrServiceClosed = errors.New("service is shutting down")
)
