// Package navigation plays back a driving route as a simulated position
// moving along the decoded polyline.
package navigation

import (
	"time"

	"fieldservice/internal/domain"
	"fieldservice/internal/geo"
)

// Config holds every tunable of route simulation.
type Config struct {
	// TickInterval is the playback step between two route points.
	TickInterval time.Duration

	// LocationInterval is how often clients should push device positions.
	// It is distinct from TickInterval and is only advertised to clients.
	LocationInterval time.Duration

	// NavigationSpeedKmh converts remaining distance to remaining minutes
	// during playback.
	NavigationSpeedKmh float64

	// EstimateSpeedKmh is used for the straight-line ETA before a route exists.
	EstimateSpeedKmh float64

	// GeofenceRadiusKm is the arrival radius around a job site.
	GeofenceRadiusKm float64

	// ProviderTimeout bounds the directions request made by Start.
	ProviderTimeout time.Duration

	Bounds   geo.Bounds
	Fallback domain.Coordinate
}

// DefaultConfig returns the reference configuration for Singapore.
func DefaultConfig() Config {
	return Config{
		TickInterval:       100 * time.Millisecond,
		LocationInterval:   5000 * time.Millisecond,
		NavigationSpeedKmh: 50,
		EstimateSpeedKmh:   40,
		GeofenceRadiusKm:   0.1,
		ProviderTimeout:    10 * time.Second,
		Bounds: geo.Bounds{
			MinLat: 1.15,
			MaxLat: 1.48,
			MinLng: 103.6,
			MaxLng: 104.1,
		},
		// Marina Bay Sands.
		Fallback: domain.Coordinate{Latitude: 1.2834, Longitude: 103.8607},
	}
}

// Policy returns the origin/destination policy derived from c.
func (c Config) Policy() geo.OriginPolicy {
	return geo.OriginPolicy{Bounds: c.Bounds, Fallback: c.Fallback}
}

// withDefaults fills non-positive durations and speeds, and unset bounds,
// from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.LocationInterval <= 0 {
		c.LocationInterval = d.LocationInterval
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = d.ProviderTimeout
	}
	if c.NavigationSpeedKmh <= 0 {
		c.NavigationSpeedKmh = d.NavigationSpeedKmh
	}
	if c.EstimateSpeedKmh <= 0 {
		c.EstimateSpeedKmh = d.EstimateSpeedKmh
	}
	if c.Bounds == (geo.Bounds{}) {
		c.Bounds = d.Bounds
	}
	if c.Fallback.IsZero() {
		c.Fallback = d.Fallback
	}
	return c
}
