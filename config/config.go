package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"techpulse/internal/indicator"
)

// Config holds all application configuration loaded from environment
// variables.
type Config struct {
	// Storage
	SQLitePath string

	// Observability
	MetricsAddr string // empty disables the metrics server
	LogLevel    string

	// Analyzer
	Tickers     string // comma-separated
	WindowSize  int    // rolling window capacity per ticker
	SnapshotTTL time.Duration
	ParamsFile  string // optional YAML overriding indicator parameters
}

// Load reads configuration from environment variables with sensible
// defaults.
func Load() *Config {
	return &Config{
		SQLitePath: getEnv("SQLITE_PATH", "data/bars.db"),

		MetricsAddr: getEnv("METRICS_ADDR", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		Tickers:     getEnv("TICKERS", ""),
		WindowSize:  getEnvInt("WINDOW_SIZE", 256),
		SnapshotTTL: getEnvDuration("SNAPSHOT_TTL", 5*time.Second),
		ParamsFile:  getEnv("PARAMS_FILE", ""),
	}
}

// ParseTickers splits the Tickers string into a clean slice.
func (c *Config) ParseTickers() []string {
	parts := strings.Split(c.Tickers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Params returns the indicator parameter set: the defaults, overlaid with
// the YAML params file when one is configured.
func (c *Config) Params() (indicator.Params, error) {
	p := indicator.DefaultParams()
	if c.ParamsFile == "" {
		return p, nil
	}
	data, err := os.ReadFile(c.ParamsFile)
	if err != nil {
		return p, fmt.Errorf("read params file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse params file %s: %w", c.ParamsFile, err)
	}
	return p, nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
