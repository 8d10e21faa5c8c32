// Package feeder drives the periodic price update cycle: fetch the base
// quote, resolve FX, compose, gate staleness, and publish to the registry.
package feeder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/compose"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/fx"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/logging"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/metrics"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/registry"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/sources"
)

// Outcome classifies one full update cycle.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeNoop    Outcome = "noop"
	OutcomeStale   Outcome = "stale"
	OutcomeError   Outcome = "error"
)

// Publisher is the slice of the registry client the loop depends on.
type Publisher interface {
	Deployed(ctx context.Context, namespace string) (map[string]bool, error)
	SetOracle(ctx context.Context, namespace string, mapping registry.Mapping) (registry.Response, error)
}

// Resolver derives USD factors for quote symbols.
type Resolver interface {
	Resolve(ctx context.Context, symbol string) fx.Factor
}

// Config holds the loop parameters.
type Config struct {
	Namespace            string
	BaseSymbol           string
	PairIDs              []string
	Interval             time.Duration
	MaxAgeMinutes        int
	MaxConsecutiveErrors int
	BackoffBase          time.Duration
	BackoffMax           time.Duration
	StatsEvery           int
	DryRun               bool
}

// Loop runs update cycles sequentially: one cycle completes before the
// next begins, so no shared state needs locking.
type Loop struct {
	cfg        Config
	sources    []sources.Source // base quote fallback order
	resolver   Resolver
	compositor *compose.Compositor
	gate       compose.Gate
	publisher  Publisher
	logger     *logging.Logger
	state      LoopState
}

// New creates an update loop.
func New(cfg Config, srcs []sources.Source, resolver Resolver, publisher Publisher, logger *logging.Logger) (*Loop, error) {
	if len(srcs) == 0 {
		return nil, ErrNoSourcesConfigured
	}
	if cfg.MaxConsecutiveErrors <= 0 {
		cfg.MaxConsecutiveErrors = 5
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 5 * time.Second
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 5 * time.Minute
	}
	if cfg.StatsEvery <= 0 {
		cfg.StatsEvery = 10
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Loop{
		cfg:        cfg,
		sources:    srcs,
		resolver:   resolver,
		compositor: compose.NewCompositor(cfg.BaseSymbol),
		gate:       compose.Gate{MaxAgeMinutes: cfg.MaxAgeMinutes},
		publisher:  publisher,
		logger:     logger,
	}, nil
}

// State returns a copy of the loop counters.
func (l *Loop) State() LoopState {
	return l.state
}

// Run executes update cycles until the context is canceled or the
// consecutive-error ceiling is reached. Reaching the ceiling is the only
// unrecoverable condition; it is logged loudly with final statistics.
func (l *Loop) Run(ctx context.Context) error {
	l.state = LoopState{StartedAt: time.Now()}

	l.logger.Info("Starting oracle update loop",
		"namespace", l.cfg.Namespace,
		"base", l.cfg.BaseSymbol,
		"pairs", l.cfg.PairIDs,
		"interval", l.cfg.Interval.String(),
		"max_price_age_minutes", l.cfg.MaxAgeMinutes,
		"dry_run", l.cfg.DryRun)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Oracle update loop stopped")
			l.logStatistics()
			return ctx.Err()
		default:
		}

		outcome, err := l.runCycle(ctx)
		l.state.record(outcome, time.Now())
		metrics.RecordCycle(string(outcome), l.state.ConsecutiveErrors)

		switch outcome {
		case OutcomeSuccess:
			l.logger.Info("Cycle completed", "status", outcome, "update", l.state.UpdateCount)
		case OutcomeNoop:
			l.logger.Info("Cycle completed, nothing to publish", "status", outcome, "update", l.state.UpdateCount)
		case OutcomeStale:
			l.logger.Warn("Cycle rejected stale price", "status", outcome, "update", l.state.UpdateCount)
		case OutcomeError:
			l.logger.Error("Cycle failed", "status", outcome, "update", l.state.UpdateCount, "error", err)
		}

		if l.state.ConsecutiveErrors >= l.cfg.MaxConsecutiveErrors {
			l.logger.Error("Too many consecutive failures, halting loop",
				"consecutive_errors", l.state.ConsecutiveErrors,
				"ceiling", l.cfg.MaxConsecutiveErrors)
			l.logStatistics()
			return fmt.Errorf("%w: %d", ErrTooManyFailures, l.state.ConsecutiveErrors)
		}

		if l.state.UpdateCount%l.cfg.StatsEvery == 0 {
			l.logStatistics()
		}

		wait := l.cfg.Interval
		if outcome == OutcomeError {
			// Sustained failure backs off exponentially instead of
			// hammering the upstream at the normal cadence.
			wait = backoffDelay(l.state.ConsecutiveErrors, l.cfg.BackoffBase, l.cfg.BackoffMax)
			metrics.RecordLoopBackoff(wait)
			l.logger.Info("Backing off before next cycle", "wait", wait.String())
		}
		if err := sleepCtx(ctx, wait); err != nil {
			l.logger.Info("Oracle update loop stopped during wait")
			l.logStatistics()
			return err
		}
	}
}

// runCycle performs one fetch -> resolve -> compose -> gate -> publish pass.
// Failures are converted into a tagged outcome here; nothing propagates a
// bare error past the loop boundary.
func (l *Loop) runCycle(ctx context.Context) (Outcome, error) {
	baseQuote, err := l.fetchBaseQuote(ctx)
	if err != nil {
		return OutcomeError, fmt.Errorf("fetch base quote: %w", err)
	}

	l.logger.Debug("Fetched base quote",
		"symbol", baseQuote.Symbol,
		"price", baseQuote.Price.String(),
		"source", baseQuote.Source,
		"age_seconds", baseQuote.AgeSeconds())

	deployed, err := l.publisher.Deployed(ctx, l.cfg.Namespace)
	if err != nil {
		return OutcomeError, fmt.Errorf("read deployed set: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(l.cfg.PairIDs))
	for _, pairID := range l.cfg.PairIDs {
		if !deployed[pairID] {
			l.logger.Debug("Pair not deployed, skipping", "pair", pairID, "namespace", l.cfg.Namespace)
			continue
		}

		_, quoteSymbol, _ := strings.Cut(pairID, "-")
		factor := l.resolver.Resolve(ctx, quoteSymbol)

		composed, err := l.compositor.Compose(pairID, baseQuote, factor)
		if err != nil {
			return OutcomeError, fmt.Errorf("compose %s: %w", pairID, err)
		}

		age := composed.AgeSeconds()
		metrics.RecordPriceAge(pairID, age)

		verdict := l.gate.Check(age)
		if !verdict.Fresh {
			l.logger.Warn("Composed price is stale",
				"pair", pairID,
				"age_minutes", verdict.AgeMinutes,
				"max_age_minutes", l.cfg.MaxAgeMinutes)
			return OutcomeStale, nil
		}

		if composed.Substituted || factor.ResolvedVia == fx.RoutePegFallback {
			l.logger.Info("Composed price uses low-confidence FX",
				"pair", pairID,
				"route", factor.ResolvedVia,
				"substituted", composed.Substituted)
		}

		prices[pairID] = composed.Price
	}

	if len(prices) == 0 {
		l.logger.Info("No configured pairs deployed on namespace", "namespace", l.cfg.Namespace)
		return OutcomeNoop, nil
	}

	mapping := registry.BuildMapping(l.cfg.Namespace, prices)

	if l.cfg.DryRun {
		l.logger.Info("Dry run, skipping publish", "mapping", mapping)
		return OutcomeSuccess, nil
	}

	resp, err := l.publisher.SetOracle(ctx, l.cfg.Namespace, mapping)
	if err != nil {
		return OutcomeError, fmt.Errorf("publish: %w", err)
	}

	l.logger.Info("Oracle prices published",
		"namespace", l.cfg.Namespace,
		"pairs", len(prices),
		"status", resp.Status)
	return OutcomeSuccess, nil
}

// fetchBaseQuote tries the configured sources in order; the first one
// returning a usable quote wins.
func (l *Loop) fetchBaseQuote(ctx context.Context) (sources.Quote, error) {
	var lastErr error
	for _, src := range l.sources {
		quote, err := sources.FetchOne(ctx, src, l.cfg.BaseSymbol)
		if err != nil {
			lastErr = err
			l.logger.Warn("Base quote source failed, trying next",
				"source", src.Name(), "error", err)
			continue
		}
		return quote, nil
	}
	return sources.Quote{}, fmt.Errorf("all base quote sources failed: %w", lastErr)
}

// logStatistics reports loop counters; called every few updates, on halt
// and on shutdown.
func (l *Loop) logStatistics() {
	fields := []interface{}{
		"uptime", time.Since(l.state.StartedAt).Round(time.Second).String(),
		"updates", l.state.UpdateCount,
		"errors", l.state.ErrorCount,
		"consecutive_errors", l.state.ConsecutiveErrors,
		"success_rate", fmt.Sprintf("%.1f%%", l.state.SuccessRate()*100),
	}
	if !l.state.LastSuccessAt.IsZero() {
		fields = append(fields, "since_last_success", time.Since(l.state.LastSuccessAt).Round(time.Second).String())
	}
	l.logger.Info("Loop statistics", fields...)
}
