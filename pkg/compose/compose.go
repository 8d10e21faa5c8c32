// Package compose derives cross prices from a base USD quote and an FX
// factor, and gates them on freshness.
package compose

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/fx"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/sources"
)

// Composed is a derived cross price. It is recomputed every cycle and
// never persisted.
type Composed struct {
	PairID     string
	Price      decimal.Decimal
	ObservedAt time.Time
	// Sources lists the contributing inputs in order: base quote, FX route.
	Sources []string
	// Substituted marks that a zero FX factor was replaced with 1.0.
	// Callers should treat it like a peg fallback for confidence purposes.
	Substituted bool
}

// AgeSeconds returns the age of the contributing base quote in whole
// seconds, computed at call time.
func (c Composed) AgeSeconds() int64 {
	return int64(time.Since(c.ObservedAt).Seconds())
}

// Compositor combines a base asset's USD price with resolved FX factors.
// One deployment serves exactly one base asset.
type Compositor struct {
	base string
}

// NewCompositor creates a compositor for the given base symbol.
func NewCompositor(base string) *Compositor {
	return &Compositor{base: base}
}

// Base returns the configured base symbol.
func (c *Compositor) Base() string {
	return c.base
}

// Compose derives pairID's price as baseQuote / factor. A zero factor is
// substituted with 1.0 rather than failing; the substitution is visible on
// the result. Pairs outside the configured base are rejected.
func (c *Compositor) Compose(pairID string, baseQuote sources.Quote, factor fx.Factor) (Composed, error) {
	base, quote, found := strings.Cut(pairID, "-")
	if !found || base != c.base {
		return Composed{}, fmt.Errorf("%w: %q (base asset is %s)", ErrUnsupportedPair, pairID, c.base)
	}
	if factor.Symbol != "" && factor.Symbol != quote {
		return Composed{}, fmt.Errorf("%w: factor for %s applied to %s", ErrFactorMismatch, factor.Symbol, pairID)
	}

	divisor := factor.USDFactor
	substituted := false
	if divisor.IsZero() {
		divisor = decimal.NewFromInt(1)
		substituted = true
	}

	return Composed{
		PairID:     pairID,
		Price:      baseQuote.Price.Div(divisor),
		ObservedAt: baseQuote.ObservedAt,
		Sources: []string{
			fmt.Sprintf("%s:%s", baseQuote.Source, baseQuote.Symbol),
			fmt.Sprintf("fx:%s", factor.ResolvedVia),
		},
		Substituted: substituted,
	}, nil
}
