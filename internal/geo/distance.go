package geo

import (
	"math"

	"fieldservice/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Distance returns the great-circle distance between a and b in kilometers.
func Distance(a, b domain.Coordinate) float64 {
	φ1 := toRadians(a.Latitude)
	φ2 := toRadians(b.Latitude)
	Δφ := φ2 - φ1
	Δλ := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	δ := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * δ
}

// PathDistance sums the segment distances of points from index from to the end.
func PathDistance(points []domain.Coordinate, from int) float64 {
	if from < 0 {
		from = 0
	}

	var total float64
	for i := from; i+1 < len(points); i++ {
		total += Distance(points[i], points[i+1])
	}
	return total
}

// WithinRadius reports whether p lies within radiusKm of center.
func WithinRadius(p, center domain.Coordinate, radiusKm float64) bool {
	return Distance(p, center) <= radiusKm
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
