package domain

import "time"

// AttendanceStatus represents a worker's clock state for a day.
type AttendanceStatus string

const (
	AttendanceClockedIn  AttendanceStatus = "CLOCKED_IN"
	AttendanceClockedOut AttendanceStatus = "CLOCKED_OUT"
)

// AttendanceRecord is one worker's attendance for one calendar day.
type AttendanceRecord struct {
	WorkerID      string           `json:"worker_id"`
	Date          string           `json:"date"` // YYYY-MM-DD
	Status        AttendanceStatus `json:"status"`
	ClockInAt     time.Time        `json:"clock_in_at"`
	ClockOutAt    *time.Time       `json:"clock_out_at,omitempty"`
	WorkedMinutes int              `json:"worked_minutes"`
}
