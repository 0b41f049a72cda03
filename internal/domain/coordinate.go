package domain

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsZero reports whether c is the zero coordinate (no fix).
func (c Coordinate) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}
