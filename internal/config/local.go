package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends for the persisted token
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// LocalConfig holds the client configuration kept in ~/.shopnetic/config.yaml
type LocalConfig struct {
	API           APIConfig          `yaml:"api"`
	Notifications NotificationConfig `yaml:"notifications"`
	Storage       StorageConfig      `yaml:"storage"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// APIConfig holds commerce API settings
type APIConfig struct {
	URL            string        `yaml:"url"`
	Timeout        time.Duration `yaml:"timeout"`
	CircuitBreaker bool          `yaml:"circuit_breaker"`
}

// NotificationConfig holds banner lifetimes
type NotificationConfig struct {
	ErrorTTL   time.Duration `yaml:"error_ttl"`
	SuccessTTL time.Duration `yaml:"success_ttl"`
}

// StorageConfig selects where the token is persisted
type StorageConfig struct {
	Backend string `yaml:"backend"` // file, sqlite, memory
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ShopneticDir returns the path to ~/.shopnetic, or $SHOPNETIC_HOME when set
func ShopneticDir() (string, error) {
	if dir := os.Getenv("SHOPNETIC_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".shopnetic"), nil
}

// EnsureShopneticDir creates the state directory layout if it doesn't exist
func EnsureShopneticDir() (string, error) {
	dir, err := ShopneticDir()
	if err != nil {
		return "", err
	}

	for _, subdir := range []string{"", "logs", "state"} {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0700); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// DefaultLocalConfig returns the defaults used when no config file exists
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		API: APIConfig{
			URL:     "http://localhost:8000",
			Timeout: 30 * time.Second,
		},
		Notifications: NotificationConfig{
			ErrorTTL:   5 * time.Second,
			SuccessTTL: 3 * time.Second,
		},
		Storage: StorageConfig{
			Backend: StorageFile,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadLocalConfig loads config.yaml from the state directory. Missing keys
// keep their defaults.
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := ShopneticDir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if os.IsNotExist(err) {
		return DefaultLocalConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultLocalConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveLocalConfig writes cfg to config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureShopneticDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
