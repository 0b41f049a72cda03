// Package directions fetches driving routes between two coordinates.
package directions

import (
	"context"
	"errors"
	"fmt"

	"fieldservice/internal/domain"
)

// ErrProvider matches every error produced by a directions provider.
var ErrProvider = errors.New("directions provider error")

// ProviderError describes a failed directions request: a transport failure,
// a non-OK provider status, or a response without a usable route.
type ProviderError struct {
	Op     string // e.g. "google"
	Status string // provider status or HTTP status, if any
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("directions: %s: status %s: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("directions: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrProvider) hold for every ProviderError.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// Result is the raw route returned by a provider.
type Result struct {
	// EncodedPolyline uses Google's Encoded Polyline Algorithm format.
	EncodedPolyline string
	DistanceText    string
	DurationText    string
	DistanceMeters  int
	DurationSeconds int
}

// Provider calculates a driving route between two points.
// Implementations must not retry on failure.
type Provider interface {
	GetRoute(ctx context.Context, origin, destination domain.Coordinate) (*Result, error)
}
