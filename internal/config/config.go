// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Config holds all configuration values for the API server and the batch
// binaries. Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (dashboard dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// RedisAddr enables the cross-process detection lock when set.
	RedisAddr string

	// PenaltyThresholdKg is the annual emissions level above which the
	// dashboard reports penalty risk.
	PenaltyThresholdKg decimal.Decimal

	// AnnualThresholdKg is the default yearly limit for analytics breach checks.
	AnnualThresholdKg decimal.Decimal

	DetectionSeed uint64
	SweepWorkers  int

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64
}

const (
	defaultThresholdKg  = "10000000"
	defaultSeed         = "42"
	defaultSweepWorkers = "4"
	defaultMaxBodyBytes = "1048576"
)

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable whose value does not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.PenaltyThresholdKg, err = envDecimal("PENALTY_THRESHOLD_KG", defaultThresholdKg); err != nil {
		return Config{}, err
	}
	if cfg.AnnualThresholdKg, err = envDecimal("ANNUAL_THRESHOLD_KG", defaultThresholdKg); err != nil {
		return Config{}, err
	}
	if cfg.DetectionSeed, err = strconv.ParseUint(getEnv("DETECTION_SEED", defaultSeed), 10, 64); err != nil {
		return Config{}, fmt.Errorf("invalid DETECTION_SEED: %w", err)
	}
	if cfg.SweepWorkers, err = envPositiveInt("SWEEP_WORKERS", defaultSweepWorkers); err != nil {
		return Config{}, err
	}
	maxBody, err := envPositiveInt("MAX_BODY_BYTES", defaultMaxBodyBytes)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDecimal(key, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

func envPositiveInt(key, fallback string) (int, error) {
	n, err := strconv.Atoi(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid %s: must be at least 1", key)
	}
	return n, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
