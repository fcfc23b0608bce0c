package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Sessions SessionsConfig `toml:"sessions"`
	Upload   UploadConfig   `toml:"upload"`
	Search   SearchConfig   `toml:"search"`
}

// APIConfig contains the remote bucket server settings.
type APIConfig struct {
	BaseURL        string  `toml:"base_url"`
	RequestsPerSec float64 `toml:"requests_per_sec"`
}

// SessionsConfig contains the local session store settings.
type SessionsConfig struct {
	Path string `toml:"path"`
}

// UploadConfig contains upload pipeline tuning.
type UploadConfig struct {
	BatchSize          int `toml:"batch_size"`
	ProgressIntervalMS int `toml:"progress_interval_ms"`
	TimeoutSec         int `toml:"timeout_sec"` // 0 disables the per-upload timeout
}

// SearchConfig contains post browsing settings.
type SearchConfig struct {
	PageSize int `toml:"page_size"`
}

// ProgressInterval returns the upload progress throttle interval.
func (u UploadConfig) ProgressInterval() time.Duration {
	return time.Duration(u.ProgressIntervalMS) * time.Millisecond
}

// Timeout returns the per-upload timeout, zero when disabled.
func (u UploadConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSec) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
