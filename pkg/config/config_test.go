package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfig() *Config {
	return &Config{
		Namespace: "btcx",
		Base:      BaseConfig{Symbol: "BTC", Sources: []string{"feed"}},
		Assets:    []AssetSpec{{PairID: "BTC-FEUSD"}},
		Feed:      FeedConfig{Mirrors: []string{"https://feed.example.org"}},
		Registry:  RegistryConfig{Endpoint: "https://registry.example.org"},
		Loop:      LoopConfig{IntervalSeconds: 60, MaxPriceAgeMinutes: 30, MaxConsecutiveErrors: 5},
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
namespace: btcx
base:
  symbol: BTC
assets:
  - pair_id: BTC-FEUSD
feed:
  mirrors:
    - https://feed.example.org
registry:
  endpoint: https://registry.example.org
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Loop.IntervalSeconds)
	assert.Equal(t, 30, cfg.Loop.MaxPriceAgeMinutes)
	assert.Equal(t, 5, cfg.Loop.MaxConsecutiveErrors)
	assert.Equal(t, 5, cfg.Registry.MaxAttempts)
	assert.Equal(t, 15*time.Second, cfg.Registry.Timeout.ToDuration())
	assert.Equal(t, 10*time.Second, cfg.Feed.Timeout.ToDuration())
	assert.Equal(t, "USDC", cfg.Spot.USDReference)
	assert.Equal(t, []string{"chain", "feed"}, cfg.Base.Sources)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	require.NoError(t, Validate(cfg))
	assert.Equal(t, []string{"BTC-FEUSD"}, cfg.PairIDs())
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_REGISTRY_URL", "https://registry.example.org")
	path := writeConfig(t, `
namespace: btcx
registry:
  endpoint: ${TEST_REGISTRY_URL}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://registry.example.org", cfg.Registry.Endpoint)
}

func TestLoad_ParsesDurations(t *testing.T) {
	path := writeConfig(t, `
namespace: btcx
feed:
  timeout: 3s
registry:
  timeout: 45s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Feed.Timeout.ToDuration())
	assert.Equal(t, 45*time.Second, cfg.Registry.Timeout.ToDuration())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(validConfig()))

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"missing namespace", func(c *Config) { c.Namespace = "" }, ErrNamespaceRequired},
		{"namespace too long", func(c *Config) { c.Namespace = "toolongns" }, ErrNamespaceTooLong},
		{"missing base symbol", func(c *Config) { c.Base.Symbol = "" }, ErrBaseSymbolRequired},
		{"no base sources", func(c *Config) { c.Base.Sources = nil }, ErrNoBaseSources},
		{"unknown base source", func(c *Config) { c.Base.Sources = []string{"tarot"} }, ErrUnknownBaseSource},
		{"chain source without rpc", func(c *Config) { c.Base.Sources = []string{"chain"} }, ErrChainConfigIncomplete},
		{"feed source without mirrors", func(c *Config) { c.Feed.Mirrors = nil }, ErrFeedConfigIncomplete},
		{"no assets", func(c *Config) { c.Assets = nil }, ErrNoAssetsConfigured},
		{"malformed pair id", func(c *Config) { c.Assets[0].PairID = "BTCFEUSD" }, ErrInvalidPairID},
		{"interval too short", func(c *Config) { c.Loop.IntervalSeconds = 5 }, ErrIntervalTooShort},
		{"max age too short", func(c *Config) { c.Loop.MaxPriceAgeMinutes = 2 }, ErrMaxAgeTooShort},
		{"missing registry endpoint", func(c *Config) { c.Registry.Endpoint = "" }, ErrRegistryEndpointRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			require.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_PairMustMatchBase(t *testing.T) {
	cfg := validConfig()
	cfg.Assets = append(cfg.Assets, AssetSpec{PairID: "ETH-USDC"})
	require.Error(t, Validate(cfg))
}
