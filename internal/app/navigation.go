package app

import (
	"net/http"

	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/zap"

	"fieldservice/internal/config"
	"fieldservice/internal/directions"
	"fieldservice/internal/domain"
	"fieldservice/internal/geo"
	"fieldservice/internal/navigation"
)

// NavigationConfig converts environment settings into simulator settings.
func NavigationConfig(nav config.NavigationConfig, dir config.DirectionsConfig) navigation.Config {
	cfg := navigation.DefaultConfig()
	cfg.TickInterval = nav.TickInterval
	cfg.LocationInterval = nav.LocationInterval
	cfg.NavigationSpeedKmh = nav.NavigationSpeedKmh
	cfg.EstimateSpeedKmh = nav.EstimateSpeedKmh
	cfg.GeofenceRadiusKm = nav.GeofenceRadiusKm
	cfg.Bounds = geo.Bounds{
		MinLat: nav.MinLat,
		MaxLat: nav.MaxLat,
		MinLng: nav.MinLng,
		MaxLng: nav.MaxLng,
	}
	cfg.Fallback = domain.Coordinate{Latitude: nav.FallbackLat, Longitude: nav.FallbackLng}
	if dir.Timeout > 0 {
		cfg.ProviderTimeout = dir.Timeout
	}
	return cfg
}

// NewDirectionsProvider returns the Google provider when an API key is
// configured and the straight-line provider otherwise. Outbound calls are
// recorded as external segments when New Relic is enabled.
func NewDirectionsProvider(cfg config.DirectionsConfig, nrApp *newrelic.Application, logger *zap.Logger) directions.Provider {
	if cfg.APIKey == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, using straight-line routes")
		return directions.StraightLineProvider{}
	}

	var transport http.RoundTripper = directions.NewTransport()
	if nrApp != nil {
		transport = newrelic.NewRoundTripper(transport)
	}

	opts := []directions.GoogleOption{
		directions.WithTimeout(cfg.Timeout),
		directions.WithHTTPClient(&http.Client{Transport: transport}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, directions.WithBaseURL(cfg.BaseURL))
	}
	return directions.NewGoogleProvider(cfg.APIKey, opts...)
}
