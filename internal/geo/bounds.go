package geo

import (
	"errors"
	"fmt"
	"math"

	"fieldservice/internal/domain"
)

// ErrInvalidCoordinate is returned when a coordinate falls outside the
// configured service area.
var ErrInvalidCoordinate = errors.New("coordinate outside service area")

// Bounds is an inclusive latitude/longitude bounding box.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// WorldBounds accepts any valid WGS84 coordinate.
func WorldBounds() Bounds {
	return Bounds{MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180}
}

// Contains reports whether c is finite and inside b.
func (b Bounds) Contains(c domain.Coordinate) bool {
	if !finite(c.Latitude) || !finite(c.Longitude) {
		return false
	}
	return c.Latitude >= b.MinLat && c.Latitude <= b.MaxLat &&
		c.Longitude >= b.MinLng && c.Longitude <= b.MaxLng
}

// OriginPolicy decides which coordinates navigation may use.
type OriginPolicy struct {
	Bounds   Bounds
	Fallback domain.Coordinate
}

// ResolveOrigin returns candidate when it is inside the bounds and the
// fallback coordinate otherwise.
func (p OriginPolicy) ResolveOrigin(candidate domain.Coordinate) domain.Coordinate {
	if p.Bounds.Contains(candidate) {
		return candidate
	}
	return p.Fallback
}

// ValidateDestination returns ErrInvalidCoordinate for out-of-bounds destinations.
func (p OriginPolicy) ValidateDestination(dest domain.Coordinate) error {
	if !p.Bounds.Contains(dest) {
		return fmt.Errorf("destination (%.6f, %.6f): %w", dest.Latitude, dest.Longitude, ErrInvalidCoordinate)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
