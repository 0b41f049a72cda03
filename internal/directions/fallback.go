package directions

import (
	"context"
	"fmt"

	"fieldservice/internal/domain"
	"fieldservice/internal/geo"
)

// straightLineSpeedKmh is the assumed speed for straight-line routes.
const straightLineSpeedKmh = 40.0

// StraightLineProvider returns a two-point route from origin to destination.
// It is used when no directions API key is configured.
type StraightLineProvider struct{}

// GetRoute implements Provider.
func (StraightLineProvider) GetRoute(ctx context.Context, origin, destination domain.Coordinate) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ProviderError{Op: "straight-line", Err: err}
	}

	km := geo.Distance(origin, destination)
	seconds := int(km / straightLineSpeedKmh * 3600)

	return &Result{
		EncodedPolyline: geo.EncodePolyline([]domain.Coordinate{origin, destination}),
		DistanceText:    fmt.Sprintf("%.1f km", km),
		DurationText:    fmt.Sprintf("%d mins", (seconds+30)/60),
		DistanceMeters:  int(km * 1000),
		DurationSeconds: seconds,
	}, nil
}

// StaticProvider always returns the same route, regardless of endpoints.
// The navsim CLI uses it to replay a recorded polyline offline.
type StaticProvider struct {
	Result Result
}

// GetRoute implements Provider.
func (p StaticProvider) GetRoute(ctx context.Context, _, _ domain.Coordinate) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ProviderError{Op: "static", Err: err}
	}
	r := p.Result
	return &r, nil
}
