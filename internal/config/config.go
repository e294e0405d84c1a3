package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Load returns the effective configuration: config.yaml overlaid with
// SHOPNETIC_* environment variables.
func Load() (*LocalConfig, error) {
	cfg, err := LoadLocalConfig()
	if err != nil {
		return nil, err
	}

	cfg.API.URL = getEnv("SHOPNETIC_API_URL", cfg.API.URL)
	cfg.API.Timeout = getEnvDuration("SHOPNETIC_API_TIMEOUT", cfg.API.Timeout)
	cfg.API.CircuitBreaker = getEnvBool("SHOPNETIC_CIRCUIT_BREAKER", cfg.API.CircuitBreaker)
	cfg.Storage.Backend = getEnv("SHOPNETIC_STORAGE", cfg.Storage.Backend)
	cfg.Logging.Level = getEnv("SHOPNETIC_LOG_LEVEL", cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *LocalConfig) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.url must be an http(s) URL, got %q", c.API.URL)
	}

	switch c.Storage.Backend {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("storage.backend must be one of file, sqlite, memory; got %q", c.Storage.Backend)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}

	if c.API.Timeout < 0 || c.Notifications.ErrorTTL < 0 || c.Notifications.SuccessTTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}

	return nil
}

// StatePath is the directory holding the JSON token store.
func StatePath(dir string) string {
	return filepath.Join(dir, "state")
}

// DatabasePath is the SQLite file used by the sqlite backend.
func DatabasePath(dir string) string {
	return filepath.Join(dir, "shopnetic.db")
}

// LogPath is the client log file.
func LogPath(dir string) string {
	return filepath.Join(dir, "logs", "shopnetic.log")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
