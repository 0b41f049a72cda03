package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.SingleFlight)
	assert.Equal(t, 100*time.Millisecond, cfg.Navigation.TickInterval)
	assert.Equal(t, 5*time.Second, cfg.Navigation.LocationInterval)
	assert.Equal(t, 50.0, cfg.Navigation.NavigationSpeedKmh)
	assert.Equal(t, 40.0, cfg.Navigation.EstimateSpeedKmh)
	assert.Equal(t, 1.2834, cfg.Navigation.FallbackLat)
	assert.Equal(t, "Asia/Singapore", cfg.Timezone)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "sqlite")
	t.Setenv("CACHE_SINGLE_FLIGHT", "true")
	t.Setenv("NAV_TICK_INTERVAL", "250ms")
	t.Setenv("NAV_SPEED_KMH", "30.5")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, CacheBackendSQLite, cfg.Cache.Backend)
	assert.True(t, cfg.Cache.SingleFlight)
	assert.Equal(t, 250*time.Millisecond, cfg.Navigation.TickInterval)
	assert.Equal(t, 30.5, cfg.Navigation.NavigationSpeedKmh)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestEnvHelpers_InvalidValuesFallBack(t *testing.T) {
	testCases := []struct {
		name string
		set  string
		get  func() any
		want any
	}{
		{name: "int", set: "REDIS_DB", get: func() any { return getIntEnv("REDIS_DB", 7) }, want: 7},
		{name: "float", set: "NAV_SPEED_KMH", get: func() any { return getFloatEnv("NAV_SPEED_KMH", 50) }, want: 50.0},
		{name: "bool", set: "NEW_RELIC_ENABLED", get: func() any { return getBoolEnv("NEW_RELIC_ENABLED", false) }, want: false},
		{name: "duration", set: "CACHE_TTL", get: func() any { return getDurationEnv("CACHE_TTL", time.Minute) }, want: time.Minute},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.set, "not-a-value")
			assert.Equal(t, tc.want, tc.get())
		})
	}
}

func TestLoad_NonPositiveDurationsFallBack(t *testing.T) {
	testCases := []struct {
		name  string
		value string
	}{
		{name: "zero", value: "0s"},
		{name: "negative", value: "-250ms"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("NAV_TICK_INTERVAL", tc.value)
			t.Setenv("DIRECTIONS_TIMEOUT", tc.value)
			t.Setenv("CACHE_TTL", tc.value)

			cfg := Load()
			assert.Equal(t, 100*time.Millisecond, cfg.Navigation.TickInterval)
			assert.Equal(t, 10*time.Second, cfg.Directions.Timeout)
			assert.Equal(t, time.Hour, cfg.Cache.TTL)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     "5433",
		User:     "svc",
		Password: "secret",
		DBName:   "fieldservice",
		SSLMode:  "require",
	}

	assert.Equal(t, "host=db port=5433 user=svc password=secret dbname=fieldservice sslmode=require", cfg.DSN())
}
