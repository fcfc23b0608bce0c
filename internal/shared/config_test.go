package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://localhost:8000/api" {
			t.Errorf("expected base URL http://localhost:8000/api, got %s", config.API.BaseURL)
		}

		if config.Upload.BatchSize != 8 {
			t.Errorf("expected upload batch size 8, got %d", config.Upload.BatchSize)
		}

		if config.Upload.TimeoutSec != 0 {
			t.Errorf("expected upload timeout disabled, got %d", config.Upload.TimeoutSec)
		}

		if config.Search.PageSize != 50 {
			t.Errorf("expected search page size 50, got %d", config.Search.PageSize)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Sessions.Path != defaultConfig.Sessions.Path {
			t.Errorf("created config sessions path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://bucket.example.com/api"
requests_per_sec = 2.5

[sessions]
path = "/custom/sessions.db"

[upload]
batch_size = 4
progress_interval_ms = 250
timeout_sec = 30

[search]
page_size = 25
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://bucket.example.com/api" {
			t.Errorf("expected base URL https://bucket.example.com/api, got %s", config.API.BaseURL)
		}

		if config.Upload.BatchSize != 4 {
			t.Errorf("expected upload batch size 4, got %d", config.Upload.BatchSize)
		}

		if config.Upload.ProgressInterval() != 250*time.Millisecond {
			t.Errorf("expected progress interval 250ms, got %v", config.Upload.ProgressInterval())
		}

		if config.Upload.Timeout() != 30*time.Second {
			t.Errorf("expected upload timeout 30s, got %v", config.Upload.Timeout())
		}

		if config.Search.PageSize != 25 {
			t.Errorf("expected search page size 25, got %d", config.Search.PageSize)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}
