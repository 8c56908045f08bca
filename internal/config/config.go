package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the shadow calendar service.
// Environment variables are parsed from the SHADOWCAL_ prefix.
type Config struct {
	// Build target selects high-level environment: local, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override driver: sqlite, postgres, or "auto"
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/shadowcal.db"`

	// Transit lookup provider
	TransitBaseURL string `envconfig:"TRANSIT_BASE_URL" default:"https://plan.golynx.example.com"`
	TransitAPIKey  string `envconfig:"TRANSIT_API_KEY" default:""`

	// Geocoding provider and its address cache
	GeocodeBaseURL       string `envconfig:"GEOCODE_BASE_URL" default:"https://geocode.example.com"`
	GeocodeAPIKey        string `envconfig:"GEOCODE_API_KEY" default:""`
	GeocodeCacheTTLHours int    `envconfig:"GEOCODE_CACHE_TTL_HOURS" default:"24"`
	GeocodeCacheSize     int    `envconfig:"GEOCODE_CACHE_SIZE" default:"10000"`

	// Batch commute enrichment
	EnrichConcurrency int `envconfig:"ENRICH_CONCURRENCY" default:"5"`

	// Health monitoring
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to
// "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Example: SHADOWCAL_HTTP_PORT, SHADOWCAL_POSTGRES_DSN.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SHADOWCAL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("transit_base_url", cfg.TransitBaseURL).
		Str("geocode_base_url", cfg.GeocodeBaseURL).
		Int("enrich_concurrency", cfg.EnrichConcurrency).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		BuildTarget:               "local",
		DBDriver:                  "sqlite",
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		SQLitePath:                "",
		GeocodeCacheTTLHours:      1,
		GeocodeCacheSize:          100,
		EnrichConcurrency:         5,
		HealthIntervalSeconds:     30,
		HealthProbeTimeoutSeconds: 2,
	}
}

// IsTesting returns true if the environment is set to testing.
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
