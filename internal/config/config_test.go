package config

import (
	"testing"
	"time"
)

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"BRAIN_MODE",
		"BRAIN_HTTP_URL",
		"BRAIN_API_KEY",
		"BRAIN_MODEL",
		"DATABASE_URL",
		"BOOKINGS_CSV_PATH",
		"APP_ABANDON_TOKEN",
		"APP_DEFAULT_USER_ID",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want :8080", cfg.BindAddr)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want 15s", cfg.ShutdownTimeout)
	}
	if cfg.BrainMode != "auto" {
		t.Fatalf("BrainMode = %q, want auto", cfg.BrainMode)
	}
	if cfg.BookingsCSVPath != "bookings.csv" {
		t.Fatalf("BookingsCSVPath = %q", cfg.BookingsCSVPath)
	}
	if cfg.AbandonToken != "quit" {
		t.Fatalf("AbandonToken = %q, want quit", cfg.AbandonToken)
	}
	if cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "true")
	t.Setenv("BRAIN_API_KEY", "  sk-test  ")
	t.Setenv("DATABASE_URL", "postgres://localhost/turfdesk")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Fatalf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if !cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin should be true")
	}
	if cfg.BrainAPIKey != "sk-test" {
		t.Fatalf("BrainAPIKey = %q, want trimmed", cfg.BrainAPIKey)
	}
	if cfg.DatabaseURL != "postgres://localhost/turfdesk" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "APP_SHUTDOWN_TIMEOUT", "soon"},
		{"sub-second shutdown", "APP_SHUTDOWN_TIMEOUT", "10ms"},
		{"bad bool", "APP_ALLOW_ANY_ORIGIN", "maybe"},
		{"blank abandon token", "APP_ABANDON_TOKEN", "   "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() should reject %s=%q", tc.key, tc.value)
			}
		})
	}
}
