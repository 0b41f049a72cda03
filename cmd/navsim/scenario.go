package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fieldservice/internal/domain"
)

// scenario describes one recorded trip for offline playback.
type scenario struct {
	Name        string        `yaml:"name,omitempty"`
	Origin      *point        `yaml:"origin,omitempty"`
	Destination *point        `yaml:"destination"`
	Polyline    string        `yaml:"polyline,omitempty"`
	Tick        time.Duration `yaml:"tick,omitempty"`
	SpeedKmh    float64       `yaml:"speed_kmh,omitempty"`

	// WorldBounds lifts the service-area check, for routes recorded
	// outside Singapore.
	WorldBounds bool `yaml:"world_bounds,omitempty"`
}

type point struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

func (p *point) coordinate() domain.Coordinate {
	return domain.Coordinate{Latitude: p.Lat, Longitude: p.Lng}
}

// loadScenario reads a scenario file. Unknown fields are rejected so a
// misspelt key does not silently fall back to a default.
func loadScenario(path string) (*scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sc scenario
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty scenario", path)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Destination == nil {
		return nil, fmt.Errorf("%s: destination is required", path)
	}
	if sc.Tick < 0 || sc.SpeedKmh < 0 {
		return nil, fmt.Errorf("%s: tick and speed_kmh must not be negative", path)
	}
	return &sc, nil
}
