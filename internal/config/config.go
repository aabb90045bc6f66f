// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aqhub/aqhub/internal/worker"
)

// Config holds application-level configuration shared by the API server and
// the collector worker.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// Env names the deployment environment (development, staging, production).
	Env string

	// OTLPEndpoint is the OpenTelemetry collector address.
	OTLPEndpoint string

	// TelemetryEnabled toggles OTLP export. Disabled by default for local runs.
	TelemetryEnabled bool

	// DatabaseEnabled selects Postgres-backed repositories. When false the
	// service runs entirely in memory.
	DatabaseEnabled bool

	// JWTSigningKey signs access tokens.
	JWTSigningKey string

	// JWTIssuer is the iss claim on issued tokens.
	JWTIssuer string

	// IQAirAPIKey authenticates against the AirVisual API. The provider falls
	// back to the community demo key when empty.
	IQAirAPIKey string

	// PurpleAirAPIKey authenticates against the PurpleAir API. The provider
	// reports itself unavailable when empty.
	PurpleAirAPIKey string

	// Collector configures the background city sampler.
	Collector worker.CollectorConfig
}

// Load reads configuration from the environment, first applying a .env file
// if one is present in the working directory.
func Load() Config {
	_ = godotenv.Load() //nolint:errcheck // a missing .env file is not an error

	return Config{
		Port:             getEnvOrDefault("APP_PORT", "8080"),
		Env:              getEnvOrDefault("APP_ENV", "development"),
		OTLPEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
		DatabaseEnabled:  os.Getenv("DATABASE_ENABLED") == "true",
		JWTSigningKey:    os.Getenv("JWT_SIGNING_KEY"),
		JWTIssuer:        getEnvOrDefault("JWT_ISSUER", "https://api.aqhub.dev"),
		IQAirAPIKey:      os.Getenv("IQAIR_API_KEY"),
		PurpleAirAPIKey:  os.Getenv("PURPLEAIR_API_KEY"),
		Collector:        collectorFromEnv(),
	}
}

// collectorFromEnv builds the collector config. COLLECTOR_CITIES is a
// semicolon-separated list of "City,State,Country" triples.
func collectorFromEnv() worker.CollectorConfig {
	cfg := worker.DefaultCollectorConfig()

	if raw := os.Getenv("COLLECTOR_CITIES"); raw != "" {
		cfg.Targets = parseTargets(raw)
	}
	if raw := os.Getenv("COLLECTOR_INTERVAL"); raw != "" {
		if interval, err := time.ParseDuration(raw); err == nil && interval > 0 {
			cfg.Interval = interval
		}
	}
	if raw := os.Getenv("COLLECTOR_RETENTION_DAYS"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			cfg.RetentionDays = days
		}
	}
	if raw := os.Getenv("COLLECTOR_CONCURRENCY"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}

	return cfg
}

// parseTargets parses "Bangkok,Bangkok,Thailand;Delhi,Delhi,India" style
// lists. Malformed entries are skipped.
func parseTargets(raw string) []worker.CityTarget {
	var targets []worker.CityTarget
	for _, entry := range strings.Split(raw, ";") {
		parts := strings.Split(entry, ",")
		if len(parts) != 3 {
			continue
		}
		target := worker.CityTarget{
			City:    strings.TrimSpace(parts[0]),
			State:   strings.TrimSpace(parts[1]),
			Country: strings.TrimSpace(parts[2]),
		}
		if target.City == "" || target.Country == "" {
			continue
		}
		targets = append(targets, target)
	}
	return targets
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
