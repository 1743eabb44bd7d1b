package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("Expected default base URL, got %q", cfg.API.BaseURL)
	}
	if cfg.API.MaxRetries != 3 {
		t.Errorf("Expected 3 retries, got %d", cfg.API.MaxRetries)
	}
	if cfg.Poll.Interval != 5*time.Second {
		t.Errorf("Expected 5s poll interval, got %v", cfg.Poll.Interval)
	}
	if cfg.Upload.MaxFileSize != 10*1024*1024 {
		t.Errorf("Expected 10MiB size ceiling, got %d", cfg.Upload.MaxFileSize)
	}
	if len(cfg.Upload.AllowedTypes) != 2 {
		t.Errorf("Expected 2 allowed types, got %d", len(cfg.Upload.AllowedTypes))
	}
}

func TestLoadAppliesFileValues(t *testing.T) {
	content := `
api:
  base_url: https://api.guardian.example
  timeout: 10s
  max_retries: 5
poll:
  interval: 1s
upload:
  max_file_size: 1048576
log:
  level: debug
  format: json
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://api.guardian.example" {
		t.Errorf("Expected base URL from file, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("Expected 10s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.API.MaxRetries != 5 {
		t.Errorf("Expected 5 retries, got %d", cfg.API.MaxRetries)
	}
	if cfg.Poll.Interval != time.Second {
		t.Errorf("Expected 1s interval, got %v", cfg.Poll.Interval)
	}
	if cfg.Upload.MaxFileSize != 1048576 {
		t.Errorf("Expected 1MiB ceiling, got %d", cfg.Upload.MaxFileSize)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Expected log settings from file, got %q/%q", cfg.Log.Level, cfg.Log.Format)
	}

	// Unset fields still get defaults.
	if cfg.API.RetryMaxDelay != 30*time.Second {
		t.Errorf("Expected default retry cap, got %v", cfg.API.RetryMaxDelay)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Expected default server port, got %d", cfg.Server.Port)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [broken"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}
