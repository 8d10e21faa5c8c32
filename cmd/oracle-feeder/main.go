package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/config"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/feeder"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/fx"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/logging"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/metrics"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/registry"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/sources"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/sources/chain"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/sources/feed"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/sources/spot"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/version"
)

var (
	configFile = flag.String("config", "config/config.yaml", "Path to configuration file")
	showVer    = flag.Bool("version", false, "Show version and exit")
	dryRun     = flag.Bool("dry-run", false, "Build oracle mappings but skip the publish call")
	namespace  = flag.String("namespace", "", "Override target registry namespace")
	interval   = flag.Int("interval", 0, "Override update interval in seconds")
	maxAge     = flag.Int("max-price-age", 0, "Override maximum acceptable price age in minutes")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("oracle-feeder version %s\n", version.Version)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// CLI overrides
	if *namespace != "" {
		cfg.Namespace = *namespace
	}
	if *interval > 0 {
		cfg.Loop.IntervalSeconds = *interval
	}
	if *maxAge > 0 {
		cfg.Loop.MaxPriceAgeMinutes = *maxAge
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	logger.Info("Starting oracle-feeder",
		"version", version.Version,
		"namespace", cfg.Namespace,
		"base", cfg.Base.Symbol)

	if *dryRun {
		logger.Warn("DRY RUN MODE ENABLED - Mappings will be built but NOT published to the registry")
	}

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx, cfg, *dryRun, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Feeder stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, dryRun bool, logger *logging.Logger) error {
	// Base price sources in fallback order
	baseSources, cleanup, err := buildBaseSources(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build price sources: %w", err)
	}
	defer cleanup()

	// Secondary-market client and FX resolver
	spotClient, err := spot.New(cfg.Spot.Endpoint, cfg.Spot.Timeout.ToDuration(), logger)
	if err != nil {
		return fmt.Errorf("failed to create spot client: %w", err)
	}
	resolver := fx.NewResolver(spotClient, cfg.FX.PreferredQuotes, cfg.Spot.Addresses, cfg.Spot.USDReference, logger)

	// Registry client
	registryClient, err := registry.NewClient(
		cfg.Registry.Endpoint,
		cfg.Registry.Timeout.ToDuration(),
		cfg.Registry.MaxAttempts,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create registry client: %w", err)
	}

	loop, err := feeder.New(feeder.Config{
		Namespace:            cfg.Namespace,
		BaseSymbol:           cfg.Base.Symbol,
		PairIDs:              cfg.PairIDs(),
		Interval:             time.Duration(cfg.Loop.IntervalSeconds) * time.Second,
		MaxAgeMinutes:        cfg.Loop.MaxPriceAgeMinutes,
		MaxConsecutiveErrors: cfg.Loop.MaxConsecutiveErrors,
		DryRun:               dryRun,
	}, baseSources, resolver, registryClient, logger)
	if err != nil {
		return fmt.Errorf("failed to create update loop: %w", err)
	}

	return loop.Run(ctx)
}

// buildBaseSources constructs the configured base quote sources in their
// fallback order. The returned cleanup closes any held connections.
func buildBaseSources(ctx context.Context, cfg *config.Config, logger *logging.Logger) ([]sources.Source, func(), error) {
	var (
		built    []sources.Source
		cleanups []func()
	)
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	for _, name := range cfg.Base.Sources {
		switch name {
		case "chain":
			src, err := chain.New(cfg.Chain.RPCURL, cfg.Chain.Contract, cfg.Chain.ChainID, cfg.Chain.Symbols, logger)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			if err := src.Initialize(ctx); err != nil {
				cleanup()
				return nil, nil, err
			}
			cleanups = append(cleanups, src.Close)
			built = append(built, src)
		case "feed":
			src, err := feed.New(cfg.Feed.Mirrors, cfg.Feed.Timeout.ToDuration(), logger)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			built = append(built, src)
		}
	}

	return built, cleanup, nil
}
