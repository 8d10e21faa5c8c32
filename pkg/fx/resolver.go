// Package fx resolves quote-asset USD factors for price composition.
package fx

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/logging"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/metrics"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/sources"
)

// Route identifies how a USD factor was obtained.
type Route string

const (
	RouteDirectMarket    Route = "direct_market"
	RouteSecondaryMarket Route = "secondary_market"
	RoutePegFallback     Route = "peg_fallback"
)

// Factor is a resolved symbol -> USD conversion factor.
// RoutePegFallback implies USDFactor == 1 exactly; callers that need to
// distinguish a trusted factor from an assumed peg must inspect ResolvedVia.
type Factor struct {
	Symbol      string
	USDFactor   decimal.Decimal
	ResolvedVia Route
}

// MarketQuoter is the slice of the secondary-market client the resolver needs.
type MarketQuoter interface {
	Mid(ctx context.Context, base, quote string) (sources.Quote, error)
	PairMidByAddress(ctx context.Context, baseAddr, quoteAddr string) (sources.Quote, error)
}

// Resolver derives USD factors by trying prioritized market lookups and
// degrading to a 1.0 peg when none succeeds.
type Resolver struct {
	quoter          MarketQuoter
	preferredQuotes []string          // direct-market quote symbols, tried in order
	addresses       map[string]string // symbol -> token address for the fallback
	usdReference    string            // address-map key quoting the USD side
	logger          *logging.Logger
}

// NewResolver creates an FX resolver.
func NewResolver(quoter MarketQuoter, preferredQuotes []string, addresses map[string]string, usdReference string, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Resolver{
		quoter:          quoter,
		preferredQuotes: preferredQuotes,
		addresses:       addresses,
		usdReference:    usdReference,
		logger:          logger,
	}
}

// Resolve returns the USD factor for a symbol. It never fails: when every
// market lookup is unavailable it returns the 1.0 peg, because downstream
// pipelines must not halt solely on FX unavailability.
func (r *Resolver) Resolve(ctx context.Context, symbol string) Factor {
	// A) Direct market: first listed quote with a usable mid wins, no averaging
	for _, quote := range r.preferredQuotes {
		if quote == symbol {
			continue
		}
		q, err := r.quoter.Mid(ctx, symbol, quote)
		if err != nil {
			r.logger.Debug("Direct FX lookup failed",
				"symbol", symbol, "quote", quote, "error", err)
			continue
		}
		if !q.Price.IsPositive() {
			continue
		}
		metrics.RecordFXResolution(symbol, string(RouteDirectMarket))
		return Factor{Symbol: symbol, USDFactor: q.Price, ResolvedVia: RouteDirectMarket}
	}

	// B) Secondary market by address pair, when both sides are configured
	symbolAddr, haveSymbol := r.addresses[symbol]
	refAddr, haveRef := r.addresses[r.usdReference]
	if haveSymbol && haveRef {
		q, err := r.quoter.PairMidByAddress(ctx, symbolAddr, refAddr)
		if err == nil && q.Price.IsPositive() {
			metrics.RecordFXResolution(symbol, string(RouteSecondaryMarket))
			return Factor{Symbol: symbol, USDFactor: q.Price, ResolvedVia: RouteSecondaryMarket}
		}
		if err != nil {
			r.logger.Debug("Secondary-market FX lookup failed",
				"symbol", symbol, "error", err)
		}
	}

	// C) Peg. Callers can check proximity to 1 before trusting the factor.
	r.logger.Warn("FX factor unresolvable, assuming 1:1 peg", "symbol", symbol)
	metrics.RecordFXResolution(symbol, string(RoutePegFallback))
	return Factor{Symbol: symbol, USDFactor: decimal.NewFromInt(1), ResolvedVia: RoutePegFallback}
}
