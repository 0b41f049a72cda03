// Package geo holds the coordinate math used by navigation: encoded
// polyline decoding, haversine distances and bounding-box validation.
package geo

import (
	"math"
	"strings"

	"fieldservice/internal/domain"
)

const polylinePrecision = 1e5

// DecodePolyline decodes a Google encoded polyline into coordinates.
//
// Empty input yields an empty slice. The input is not validated: ill-formed
// strings produce meaningless points, and a trailing value that runs past
// the end of the string is dropped.
func DecodePolyline(encoded string) []domain.Coordinate {
	points := make([]domain.Coordinate, 0, len(encoded)/4)

	var lat, lng int64
	for i := 0; i < len(encoded); {
		dLat, next, ok := decodeValue(encoded, i)
		if !ok {
			break
		}
		dLng, next, ok := decodeValue(encoded, next)
		if !ok {
			break
		}
		i = next

		lat += dLat
		lng += dLng
		points = append(points, domain.Coordinate{
			Latitude:  float64(lat) / polylinePrecision,
			Longitude: float64(lng) / polylinePrecision,
		})
	}

	return points
}

// decodeValue reads one zig-zag encoded varint starting at s[i].
// It returns the value, the index after it and false if s ended first.
func decodeValue(s string, i int) (int64, int, bool) {
	var result int64
	var shift uint

	for i < len(s) {
		b := int64(s[i]) - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			if result&1 != 0 {
				return ^(result >> 1), i, true
			}
			return result >> 1, i, true
		}
	}

	return 0, i, false
}

// EncodePolyline encodes coordinates with the Google polyline algorithm.
func EncodePolyline(points []domain.Coordinate) string {
	var b strings.Builder

	var prevLat, prevLng int64
	for _, p := range points {
		lat := int64(math.Round(p.Latitude * polylinePrecision))
		lng := int64(math.Round(p.Longitude * polylinePrecision))
		encodeValue(&b, lat-prevLat)
		encodeValue(&b, lng-prevLng)
		prevLat, prevLng = lat, lng
	}

	return b.String()
}

func encodeValue(b *strings.Builder, v int64) {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		b.WriteByte(byte((0x20 | (u & 0x1f)) + 63))
		u >>= 5
	}
	b.WriteByte(byte(u + 63))
}
