package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"fieldservice/internal/domain"
)

var (
	bedok     = domain.Coordinate{Latitude: 1.3546, Longitude: 103.9450}
	eastCoast = domain.Coordinate{Latitude: 1.3236, Longitude: 103.9273}
)

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][2]domain.Coordinate{
		{bedok, eastCoast},
		{{Latitude: 38.5, Longitude: -120.2}, {Latitude: 43.252, Longitude: -126.453}},
		{{Latitude: -5, Longitude: 175}, {Latitude: 5, Longitude: -175}},
		{{Latitude: 89.9, Longitude: 0}, {Latitude: -89.9, Longitude: 180}},
	}

	for _, p := range pairs {
		assert.InDelta(t, Distance(p[0], p[1]), Distance(p[1], p[0]), 1e-9)
	}
}

func TestDistance_SamePointIsZero(t *testing.T) {
	for _, c := range []domain.Coordinate{bedok, eastCoast, {}, {Latitude: -45.1, Longitude: 170.3}} {
		assert.Equal(t, 0.0, Distance(c, c))
	}
}

func TestDistance_KnownValues(t *testing.T) {
	// One degree of arc along the equator.
	oneDegree := Distance(domain.Coordinate{}, domain.Coordinate{Longitude: 1})
	assert.InDelta(t, EarthRadiusKm*math.Pi/180, oneDegree, 1e-9)

	assert.InDelta(t, 3.969, Distance(bedok, eastCoast), 0.01)
}

func TestDistance_TriangleOnGreatCircle(t *testing.T) {
	// Points on the same meridian lie on one great circle.
	a := domain.Coordinate{Latitude: 10, Longitude: 20}
	b := domain.Coordinate{Latitude: 12.5, Longitude: 20}
	c := domain.Coordinate{Latitude: 15, Longitude: 20}
	assert.InDelta(t, Distance(a, c), Distance(a, b)+Distance(b, c), 1e-6)

	// Equator as well.
	a = domain.Coordinate{Longitude: 100}
	b = domain.Coordinate{Longitude: 103.7}
	c = domain.Coordinate{Longitude: 104}
	assert.InDelta(t, Distance(a, c), Distance(a, b)+Distance(b, c), 1e-6)
}

func TestPathDistance(t *testing.T) {
	mid := domain.Coordinate{Latitude: 1.34, Longitude: 103.936}
	path := []domain.Coordinate{bedok, mid, eastCoast}

	full := Distance(bedok, mid) + Distance(mid, eastCoast)
	assert.InDelta(t, full, PathDistance(path, 0), 1e-12)
	assert.InDelta(t, Distance(mid, eastCoast), PathDistance(path, 1), 1e-12)
	assert.Equal(t, 0.0, PathDistance(path, 2))
	assert.Equal(t, 0.0, PathDistance(path, 5))
	assert.InDelta(t, full, PathDistance(path, -1), 1e-12)
	assert.Equal(t, 0.0, PathDistance(nil, 0))
}

func TestWithinRadius(t *testing.T) {
	assert.True(t, WithinRadius(bedok, bedok, 0))
	assert.True(t, WithinRadius(bedok, eastCoast, 4))
	assert.False(t, WithinRadius(bedok, eastCoast, 3.5))
}
