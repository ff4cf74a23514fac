// Package config loads the server's runtime settings from the environment and
// the per-floor-plan catalog from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Environment variable names.
const (
	EnvLogLevel      = "FLOORPLAN_MCP_LOG_LEVEL"
	EnvOracleURL     = "FLOORPLAN_ORACLE_URL"
	EnvOracleTimeout = "FLOORPLAN_ORACLE_TIMEOUT"
	EnvCatalog       = "FLOORPLAN_CATALOG"
)

// Config holds the process-wide settings.
type Config struct {
	LogLevel zerolog.Level

	// OracleURL is the segmentation service base URL. Empty disables
	// prediction.
	OracleURL string

	// OracleTimeout bounds each blocking oracle call.
	OracleTimeout time.Duration

	// CatalogPath names the YAML catalog; empty means none.
	CatalogPath string
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	level, err := zerolog.ParseLevel(getEnv(EnvLogLevel, "info"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
	}

	timeout, err := time.ParseDuration(getEnv(EnvOracleTimeout, "60s"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvOracleTimeout, err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("%s: negative timeout %s", EnvOracleTimeout, timeout)
	}

	return &Config{
		LogLevel:      level,
		OracleURL:     getEnv(EnvOracleURL, ""),
		OracleTimeout: timeout,
		CatalogPath:   getEnv(EnvCatalog, ""),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
