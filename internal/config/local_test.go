package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestShopneticDir(t *testing.T) {
	t.Setenv("SHOPNETIC_HOME", "")
	t.Setenv("HOME", t.TempDir())

	dir, err := ShopneticDir()
	if err != nil {
		t.Fatalf("ShopneticDir() error = %v", err)
	}
	if filepath.Base(dir) != ".shopnetic" {
		t.Errorf("ShopneticDir() = %q, want ending with .shopnetic", dir)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ShopneticDir() = %q, want absolute path", dir)
	}
}

func TestShopneticDir_Override(t *testing.T) {
	want := t.TempDir()
	t.Setenv("SHOPNETIC_HOME", want)

	dir, err := ShopneticDir()
	if err != nil {
		t.Fatalf("ShopneticDir() error = %v", err)
	}
	if dir != want {
		t.Errorf("ShopneticDir() = %q, want %q", dir, want)
	}
}

func TestEnsureShopneticDir(t *testing.T) {
	home := filepath.Join(t.TempDir(), "shop")
	t.Setenv("SHOPNETIC_HOME", home)

	dir, err := EnsureShopneticDir()
	if err != nil {
		t.Fatalf("EnsureShopneticDir() error = %v", err)
	}
	if dir != home {
		t.Errorf("EnsureShopneticDir() = %q, want %q", dir, home)
	}

	for _, subdir := range []string{"logs", "state"} {
		if _, err := os.Stat(filepath.Join(dir, subdir)); os.IsNotExist(err) {
			t.Errorf("EnsureShopneticDir() should create %s", subdir)
		}
	}
}

func TestDefaultLocalConfig(t *testing.T) {
	cfg := DefaultLocalConfig()

	if cfg.API.URL != "http://localhost:8000" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("API.Timeout = %v, want 30s", cfg.API.Timeout)
	}
	if cfg.API.CircuitBreaker {
		t.Error("API.CircuitBreaker should default to false")
	}
	if cfg.Notifications.ErrorTTL != 5*time.Second {
		t.Errorf("ErrorTTL = %v, want 5s", cfg.Notifications.ErrorTTL)
	}
	if cfg.Notifications.SuccessTTL != 3*time.Second {
		t.Errorf("SuccessTTL = %v, want 3s", cfg.Notifications.SuccessTTL)
	}
	if cfg.Storage.Backend != StorageFile {
		t.Errorf("Storage.Backend = %q, want file", cfg.Storage.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadLocalConfig_Missing(t *testing.T) {
	t.Setenv("SHOPNETIC_HOME", t.TempDir())

	cfg, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if cfg.API.URL != DefaultLocalConfig().API.URL {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadLocalConfig_PartialFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SHOPNETIC_HOME", dir)

	data := []byte("api:\n  url: https://shop.example.com\n  timeout: 10s\nnotifications:\n  error_ttl: 8s\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if cfg.API.URL != "https://shop.example.com" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v", cfg.API.Timeout)
	}
	if cfg.Notifications.ErrorTTL != 8*time.Second {
		t.Errorf("ErrorTTL = %v", cfg.Notifications.ErrorTTL)
	}
	if cfg.Notifications.SuccessTTL != 3*time.Second {
		t.Errorf("SuccessTTL = %v, want default 3s", cfg.Notifications.SuccessTTL)
	}
}

func TestLoadLocalConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SHOPNETIC_HOME", dir)

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadLocalConfig(); err == nil {
		t.Error("LoadLocalConfig() should fail on invalid YAML")
	}
}

func TestSaveLocalConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SHOPNETIC_HOME", dir)

	cfg := DefaultLocalConfig()
	cfg.Storage.Backend = StorageSQLite
	cfg.API.CircuitBreaker = true

	if err := SaveLocalConfig(cfg); err != nil {
		t.Fatalf("SaveLocalConfig() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("saved file is not YAML: %v", err)
	}
	if _, ok := doc["storage"]; !ok {
		t.Error("saved file should have a storage section")
	}

	loaded, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if loaded.Storage.Backend != StorageSQLite || !loaded.API.CircuitBreaker {
		t.Errorf("loaded = %+v", loaded)
	}
}
