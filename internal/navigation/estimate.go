package navigation

import (
	"fmt"
	"math"
	"time"

	"fieldservice/internal/domain"
	"fieldservice/internal/geo"
)

// ETA is a straight-line arrival estimate made before a route is fetched.
type ETA struct {
	DistanceKm      float64
	DistanceText    string
	DurationMinutes int
	DurationText    string
	SpeedKmh        float64
	ArrivalTime     time.Time
	ArrivalText     string
}

// Estimate computes the "as the crow flies" ETA from origin to destination
// at speedKmh, starting at now.
func Estimate(origin, destination domain.Coordinate, speedKmh float64, now time.Time) ETA {
	km := geo.Distance(origin, destination)
	minutes := minutesAt(km, speedKmh)
	arrival := now.Add(time.Duration(minutes) * time.Minute)

	return ETA{
		DistanceKm:      km,
		DistanceText:    fmt.Sprintf("%.1f km", km),
		DurationMinutes: minutes,
		DurationText:    formatMinutes(minutes),
		SpeedKmh:        speedKmh,
		ArrivalTime:     arrival,
		ArrivalText:     arrival.Format("15:04"),
	}
}

// minutesAt converts a distance to whole minutes of travel at speedKmh.
func minutesAt(km, speedKmh float64) int {
	if speedKmh <= 0 {
		return 0
	}
	return int(math.Round(km / speedKmh * 60))
}

func formatMinutes(m int) string {
	if m == 1 {
		return "1 min"
	}
	return fmt.Sprintf("%d mins", m)
}

// WithinGeofence reports whether position is within radiusKm of site.
func WithinGeofence(position, site domain.Coordinate, radiusKm float64) bool {
	return geo.WithinRadius(position, site, radiusKm)
}
