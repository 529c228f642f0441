package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config contains all runtime settings for the booking assistant service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	BrainMode    string
	BrainHTTPURL string
	BrainAPIKey  string
	BrainModel   string

	DatabaseURL     string
	BookingsCSVPath string

	AbandonToken  string
	DefaultUserID string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "turfdesk"),
		AllowAnyOrigin:   false,
		BrainMode:        envOrDefault("BRAIN_MODE", "auto"),
		BrainHTTPURL:     envTrimmed("BRAIN_HTTP_URL"),
		BrainAPIKey:      envTrimmed("BRAIN_API_KEY"),
		BrainModel:       envOrDefault("BRAIN_MODEL", "gpt-4o-mini"),
		DatabaseURL:      envTrimmed("DATABASE_URL"),
		BookingsCSVPath:  envOrDefault("BOOKINGS_CSV_PATH", "bookings.csv"),
		AbandonToken:     envOrDefault("APP_ABANDON_TOKEN", "quit"),
		DefaultUserID:    envOrDefault("APP_DEFAULT_USER_ID", "anonymous"),
		ShutdownTimeout:  15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.ShutdownTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be at least 1s")
	}
	if strings.TrimSpace(cfg.AbandonToken) == "" {
		return Config{}, fmt.Errorf("APP_ABANDON_TOKEN must not be blank")
	}
	if cfg.DatabaseURL == "" && strings.TrimSpace(cfg.BookingsCSVPath) == "" {
		return Config{}, fmt.Errorf("BOOKINGS_CSV_PATH is required when DATABASE_URL is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
