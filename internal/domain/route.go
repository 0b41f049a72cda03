package domain

import "time"

// NavigationStatus represents the state of a navigation session.
type NavigationStatus string

const (
	NavigationIdle       NavigationStatus = "IDLE"
	NavigationNavigating NavigationStatus = "NAVIGATING"
	NavigationArrived    NavigationStatus = "ARRIVED"
	NavigationStopped    NavigationStatus = "STOPPED"
)

// Route is the decoded result of a directions query.
// A Route is immutable once produced.
type Route struct {
	Points          []Coordinate
	DistanceText    string
	DurationText    string
	DistanceKm      float64
	DurationMinutes float64
}

// SimulationState is the playback state of one navigation session.
type SimulationState struct {
	SessionID        string
	Status           NavigationStatus
	Index            int
	TotalPoints      int
	Position         Coordinate
	Destination      Coordinate
	RemainingKm      float64
	RemainingMinutes int
	UpdatedAt        time.Time
}

// Running reports whether playback is still in progress.
func (s SimulationState) Running() bool {
	return s.Status == NavigationNavigating
}
