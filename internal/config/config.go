// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"tariffkey/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Rates contains rate schedule configuration
	Rates RatesConfig `json:"rates"`

	// Database contains Postgres store configuration
	Database DatabaseConfig `json:"database,omitempty"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// RatesConfig contains rate schedule settings
type RatesConfig struct {
	// SchedulePath is the path to the HCL rate schedule file
	SchedulePath string `json:"schedule_path"`

	// DefaultFeeCodes are the fee codes applied when none are requested
	DefaultFeeCodes []string `json:"default_fee_codes,omitempty"`
}

// DatabaseConfig contains Postgres connection settings
type DatabaseConfig struct {
	// URL is the Postgres connection string
	URL string `json:"url,omitempty"`

	// QueryTimeoutSeconds bounds store queries
	QueryTimeoutSeconds int `json:"query_timeout_seconds"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (text, json)
	DefaultFormat string `json:"default_format"`

	// ShowSegments shows the per-segment breakdown
	ShowSegments bool `json:"show_segments"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	schedulePath := filepath.Join(homeDir, ".tariffkey", "rates.hcl")

	return &Config{
		Version: "1.0",
		Rates: RatesConfig{
			SchedulePath: schedulePath,
		},
		Database: DatabaseConfig{
			QueryTimeoutSeconds: 10,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ShowSegments:  true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
