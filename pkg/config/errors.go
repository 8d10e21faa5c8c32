package config

import "errors"

var (
	// ErrNamespaceRequired indicates a missing registry namespace.
	ErrNamespaceRequired = errors.New("namespace is required")
	// ErrNamespaceTooLong indicates the namespace exceeds the registry limit.
	ErrNamespaceTooLong = errors.New("namespace must be at most 6 characters")
	// ErrBaseSymbolRequired indicates a missing base asset symbol.
	ErrBaseSymbolRequired = errors.New("base symbol is required")
	// ErrNoAssetsConfigured indicates that no assets are configured.
	ErrNoAssetsConfigured = errors.New("at least one asset must be configured")
	// ErrIntervalTooShort indicates the loop interval is below the minimum.
	ErrIntervalTooShort = errors.New("update interval must be at least 10 seconds")
	// ErrMaxAgeTooShort indicates the staleness threshold is below the minimum.
	ErrMaxAgeTooShort = errors.New("max price age must be at least 5 minutes")
	// ErrRegistryEndpointRequired indicates a missing registry endpoint.
	ErrRegistryEndpointRequired = errors.New("registry endpoint is required")
	// ErrNoBaseSources indicates no price source is configured for the base asset.
	ErrNoBaseSources = errors.New("at least one base price source is required")
	// ErrUnknownBaseSource indicates an unrecognized base source name.
	ErrUnknownBaseSource = errors.New("unknown base source")
	// ErrInvalidPairID indicates a pair identifier not in BASE-QUOTE form.
	ErrInvalidPairID = errors.New("pair_id must be in BASE-QUOTE format")
	// ErrChainConfigIncomplete indicates a partially-configured chain source.
	ErrChainConfigIncomplete = errors.New("chain source requires rpc_url and contract")
	// ErrFeedConfigIncomplete indicates a feed source without mirrors.
	ErrFeedConfigIncomplete = errors.New("feed source requires at least one mirror")
)
