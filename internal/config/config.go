package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Directions DirectionsConfig
	Navigation NavigationConfig
	Log        LogConfig
	NewRelic   NewRelicConfig
	Timezone   string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration for the document store.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns int
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Cache backends.
const (
	CacheBackendRedis  = "redis"
	CacheBackendSQLite = "sqlite"
)

// CacheConfig holds job cache configuration.
type CacheConfig struct {
	Backend      string // "redis" or "sqlite"
	SQLitePath   string
	KeyPrefix    string
	TTL          time.Duration
	SingleFlight bool
}

// DirectionsConfig holds directions provider configuration. An empty API
// key selects the straight-line provider.
type DirectionsConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NavigationConfig holds route simulation settings.
type NavigationConfig struct {
	TickInterval       time.Duration
	LocationInterval   time.Duration
	NavigationSpeedKmh float64
	EstimateSpeedKmh   float64
	GeofenceRadiusKm   float64
	MinLat             float64
	MaxLat             float64
	MinLng             float64
	MaxLng             float64
	FallbackLat        float64
	FallbackLng        float64
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level       string
	Development bool
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "fieldservice"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 20),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Backend:      getEnv("CACHE_BACKEND", CacheBackendRedis),
			SQLitePath:   getEnv("CACHE_SQLITE_PATH", "fieldservice-cache.db"),
			KeyPrefix:    getEnv("CACHE_KEY_PREFIX", "kv:"),
			TTL:          getDurationEnv("CACHE_TTL", time.Hour),
			SingleFlight: getBoolEnv("CACHE_SINGLE_FLIGHT", false),
		},
		Directions: DirectionsConfig{
			APIKey:  getEnv("GOOGLE_MAPS_API_KEY", ""),
			BaseURL: getEnv("DIRECTIONS_BASE_URL", ""),
			Timeout: getDurationEnv("DIRECTIONS_TIMEOUT", 10*time.Second),
		},
		Navigation: NavigationConfig{
			TickInterval:       getDurationEnv("NAV_TICK_INTERVAL", 100*time.Millisecond),
			LocationInterval:   getDurationEnv("NAV_LOCATION_INTERVAL", 5*time.Second),
			NavigationSpeedKmh: getFloatEnv("NAV_SPEED_KMH", 50),
			EstimateSpeedKmh:   getFloatEnv("NAV_ESTIMATE_SPEED_KMH", 40),
			GeofenceRadiusKm:   getFloatEnv("NAV_GEOFENCE_RADIUS_KM", 0.1),
			MinLat:             getFloatEnv("NAV_MIN_LAT", 1.15),
			MaxLat:             getFloatEnv("NAV_MAX_LAT", 1.48),
			MinLng:             getFloatEnv("NAV_MIN_LNG", 103.6),
			MaxLng:             getFloatEnv("NAV_MAX_LNG", 104.1),
			FallbackLat:        getFloatEnv("NAV_FALLBACK_LAT", 1.2834),
			FallbackLng:        getFloatEnv("NAV_FALLBACK_LNG", 103.8607),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getBoolEnv("LOG_DEVELOPMENT", false),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "fieldservice"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Timezone: getEnv("TIMEZONE", "Asia/Singapore"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getDurationEnv parses key as a duration. Unparseable and non-positive
// values fall back to defaultValue.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}
