package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	if cfg.Namespace == "" {
		return ErrNamespaceRequired
	}
	if len(cfg.Namespace) > 6 {
		return fmt.Errorf("%w: %q", ErrNamespaceTooLong, cfg.Namespace)
	}

	if cfg.Base.Symbol == "" {
		return ErrBaseSymbolRequired
	}
	if len(cfg.Base.Sources) == 0 {
		return ErrNoBaseSources
	}
	for _, name := range cfg.Base.Sources {
		switch name {
		case "chain":
			if cfg.Chain.RPCURL == "" || cfg.Chain.Contract == "" {
				return ErrChainConfigIncomplete
			}
		case "feed":
			if len(cfg.Feed.Mirrors) == 0 {
				return ErrFeedConfigIncomplete
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownBaseSource, name)
		}
	}

	if len(cfg.Assets) == 0 {
		return ErrNoAssetsConfigured
	}
	for i, a := range cfg.Assets {
		if err := validateAsset(&a); err != nil {
			return fmt.Errorf("asset %d (%s): %w", i, a.PairID, err)
		}
		// Every pair must share the configured base asset
		base, _, _ := strings.Cut(a.PairID, "-")
		if base != cfg.Base.Symbol {
			return fmt.Errorf("asset %d: pair %q does not match base symbol %q", i, a.PairID, cfg.Base.Symbol)
		}
	}

	if cfg.Loop.IntervalSeconds < 10 {
		return fmt.Errorf("%w: got %ds", ErrIntervalTooShort, cfg.Loop.IntervalSeconds)
	}
	if cfg.Loop.MaxPriceAgeMinutes < 5 {
		return fmt.Errorf("%w: got %dmin", ErrMaxAgeTooShort, cfg.Loop.MaxPriceAgeMinutes)
	}

	if cfg.Registry.Endpoint == "" {
		return ErrRegistryEndpointRequired
	}

	return nil
}

func validateAsset(a *AssetSpec) error {
	base, quote, found := strings.Cut(a.PairID, "-")
	if !found || base == "" || quote == "" {
		return ErrInvalidPairID
	}
	return nil
}
