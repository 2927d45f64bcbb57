// Package config provides environment-driven configuration for the query
// execution core, adapted from persistor/internal/config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all engine configuration values.
type Config struct {
	// DatabaseURL is the pgstore DSN. Empty means run against an in-memory
	// gstore.Store only (internal/pgstore is optional, spec §4.2 "backing
	// store is pluggable").
	DatabaseURL Secret
	Port        string
	ListenHost  string
	CORSOrigins []string
	LogLevel    string

	// DefaultScanChunks is how many goroutines a scan-rooted pipeline fans
	// out over when a plan does not specify its own Chunks count (spec §5
	// "parallel threads over disjoint chunks of the node vector").
	DefaultScanChunks int

	// TelemetryEnabled turns the WebSocket event hub on.
	TelemetryEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      Secret(envOrDefault("DATABASE_URL", "")),
		Port:             envOrDefault("PORT", "8080"),
		ListenHost:       envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		TelemetryEnabled: envOrDefault("TELEMETRY_ENABLED", "true") == "true",
	}

	chunks, err := strconv.Atoi(envOrDefault("DEFAULT_SCAN_CHUNKS", "4"))
	if err != nil || chunks < 1 || chunks > 256 {
		return nil, fmt.Errorf("DEFAULT_SCAN_CHUNKS must be an integer between 1 and 256")
	}
	cfg.DefaultScanChunks = chunks

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:5173")
	cfg.CORSOrigins = strings.Split(origins, ",")
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// UsesPgstore reports whether a Postgres-backed store was configured.
func (c *Config) UsesPgstore() bool {
	return c.DatabaseURL.Value() != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
