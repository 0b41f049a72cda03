package domain

import "time"

// JobStatus represents the lifecycle status of a job.
type JobStatus string

const (
	JobStatusAssigned   JobStatus = "ASSIGNED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
)

// JobRecord is the opaque job document as stored remotely.
type JobRecord = Document

// JobStatusOf returns the status field of a job record.
func JobStatusOf(job JobRecord) JobStatus {
	return JobStatus(job.String("status"))
}

// CacheEntry is a locally cached job record.
type CacheEntry struct {
	Key      string    `json:"key"`
	Data     JobRecord `json:"data"`
	StoredAt int64     `json:"stored_at"` // Unix milliseconds
}

// StoredTime returns StoredAt as a time.Time.
func (e CacheEntry) StoredTime() time.Time {
	return time.UnixMilli(e.StoredAt)
}

// Fresh reports whether the entry is younger than ttl at now.
func (e CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredTime()) < ttl
}
