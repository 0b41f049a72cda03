package directions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldservice/internal/geo"
)

func TestStraightLineProvider(t *testing.T) {
	res, err := StraightLineProvider{}.GetRoute(context.Background(), origin, destination)
	require.NoError(t, err)

	points := geo.DecodePolyline(res.EncodedPolyline)
	require.Len(t, points, 2)
	assert.InDelta(t, origin.Latitude, points[0].Latitude, 1e-5)
	assert.InDelta(t, destination.Longitude, points[1].Longitude, 1e-5)

	assert.Equal(t, "4.0 km", res.DistanceText)
	assert.Equal(t, "6 mins", res.DurationText)
	assert.InDelta(t, 3969, res.DistanceMeters, 5)
}

func TestStaticProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := StaticProvider{Result: Result{EncodedPolyline: "abc"}}.GetRoute(ctx, origin, destination)
	assert.True(t, errors.Is(err, ErrProvider))
	assert.True(t, errors.Is(err, context.Canceled))
}
