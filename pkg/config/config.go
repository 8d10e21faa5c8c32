// Package config provides configuration loading and validation for the feeder.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file with environment variable expansion.
func Load(path string) (*Config, error) {
	// Validate and sanitize path
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	// Read config file
	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in YAML
	expanded := os.ExpandEnv(string(data))

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	// Loop defaults
	if cfg.Loop.IntervalSeconds == 0 {
		cfg.Loop.IntervalSeconds = 60
	}
	if cfg.Loop.MaxPriceAgeMinutes == 0 {
		cfg.Loop.MaxPriceAgeMinutes = 30
	}
	if cfg.Loop.MaxConsecutiveErrors == 0 {
		cfg.Loop.MaxConsecutiveErrors = 5
	}

	// HTTP client defaults
	if cfg.Feed.Timeout.ToDuration() == 0 {
		cfg.Feed.Timeout = Duration(10 * time.Second)
	}
	if cfg.Spot.Timeout.ToDuration() == 0 {
		cfg.Spot.Timeout = Duration(10 * time.Second)
	}
	if cfg.Registry.Timeout.ToDuration() == 0 {
		cfg.Registry.Timeout = Duration(15 * time.Second)
	}
	if cfg.Registry.MaxAttempts == 0 {
		cfg.Registry.MaxAttempts = 5
	}

	// FX defaults
	if cfg.Spot.USDReference == "" {
		cfg.Spot.USDReference = "USDC"
	}

	// Base source fallback order
	if len(cfg.Base.Sources) == 0 {
		cfg.Base.Sources = []string{"chain", "feed"}
	}

	// Metrics defaults
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// PairIDs returns the configured pair identifiers in declaration order.
func (c *Config) PairIDs() []string {
	out := make([]string, 0, len(c.Assets))
	for _, a := range c.Assets {
		out = append(out, a.PairID)
	}
	return out
}
