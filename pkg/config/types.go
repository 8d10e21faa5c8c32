package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure
type Config struct {
	Namespace string        `yaml:"namespace"`
	Base      BaseConfig    `yaml:"base"`
	Assets    []AssetSpec   `yaml:"assets"`
	Feed      FeedConfig    `yaml:"feed"`
	Chain     ChainConfig   `yaml:"chain"`
	Spot      SpotConfig    `yaml:"spot"`
	FX        FXConfig      `yaml:"fx"`
	Registry  RegistryConfig `yaml:"registry"`
	Loop      LoopConfig    `yaml:"loop"`
	Metrics   MetricsConfig `yaml:"metrics"`
	Logging   LoggingConfig `yaml:"logging"`
}

// BaseConfig names the base asset and the ordered price sources to try for it
type BaseConfig struct {
	Symbol  string   `yaml:"symbol"`  // e.g. "BTC"
	Sources []string `yaml:"sources"` // fallback order, e.g. ["chain", "feed"]
}

// AssetSpec describes one deployable pair. Read-only input to the pipeline.
type AssetSpec struct {
	PairID       string `yaml:"pair_id"`       // e.g. "BTC-FEUSD"
	SizeDecimals int    `yaml:"size_decimals"`
	IsolatedOnly bool   `yaml:"isolated_only"`
	InitialPrice string `yaml:"initial_price"`
}

// FeedConfig configures the off-chain HTTP price feed
type FeedConfig struct {
	Mirrors []string `yaml:"mirrors"`
	Timeout Duration `yaml:"timeout"`
}

// ChainConfig configures the on-chain data-feed contract source
type ChainConfig struct {
	RPCURL   string            `yaml:"rpc_url"`
	Contract string            `yaml:"contract"`
	ChainID  uint64            `yaml:"chain_id"`
	Symbols  map[string]string `yaml:"symbols"` // unified symbol -> contract feed name
}

// SpotConfig configures the secondary-market quote source
type SpotConfig struct {
	Endpoint     string            `yaml:"endpoint"`
	Timeout      Duration          `yaml:"timeout"`
	Addresses    map[string]string `yaml:"addresses"`     // symbol -> token address
	USDReference string            `yaml:"usd_reference"` // e.g. "USDC"
}

// FXConfig configures quote-asset USD factor resolution
type FXConfig struct {
	PreferredQuotes []string `yaml:"preferred_quotes"` // direct-market quotes tried in order
}

// RegistryConfig configures the downstream oracle registry
type RegistryConfig struct {
	Endpoint    string   `yaml:"endpoint"`
	Timeout     Duration `yaml:"timeout"`
	MaxAttempts int      `yaml:"max_attempts"`
}

// LoopConfig configures the update loop
type LoopConfig struct {
	IntervalSeconds      int `yaml:"interval_seconds"`
	MaxPriceAgeMinutes   int `yaml:"max_price_age_minutes"`
	MaxConsecutiveErrors int `yaml:"max_consecutive_errors"`
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "10s"
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// ToDuration converts to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
