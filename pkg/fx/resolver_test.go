package fx

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/sources"
)

// fakeQuoter scripts direct-market and address-pair responses.
type fakeQuoter struct {
	mids      map[string]string // "BASE/QUOTE" -> mid price
	pairMids  map[string]string // "baseAddr/quoteAddr" -> mid price
	midCalls  []string
	pairCalls []string
}

func (f *fakeQuoter) Mid(_ context.Context, base, quote string) (sources.Quote, error) {
	key := base + "/" + quote
	f.midCalls = append(f.midCalls, key)
	px, ok := f.mids[key]
	if !ok {
		return sources.Quote{}, fmt.Errorf("%w: %s", sources.ErrSymbolNotFound, key)
	}
	return sources.Quote{
		Symbol:     base,
		Price:      decimal.RequireFromString(px),
		Kind:       sources.KindSecondaryMarket,
		Source:     "spot",
		ObservedAt: time.Now(),
	}, nil
}

func (f *fakeQuoter) PairMidByAddress(_ context.Context, baseAddr, quoteAddr string) (sources.Quote, error) {
	key := baseAddr + "/" + quoteAddr
	f.pairCalls = append(f.pairCalls, key)
	px, ok := f.pairMids[key]
	if !ok {
		return sources.Quote{}, errors.New("pair not listed")
	}
	return sources.NewQuote(baseAddr, decimal.RequireFromString(px), sources.KindSecondaryMarket, "spot", time.Now())
}

func TestResolve_PreferredQuoteOrderWins(t *testing.T) {
	quoter := &fakeQuoter{mids: map[string]string{
		"FEUSD/USDT0": "0.9991",
		"FEUSD/USDHL": "1.0005",
	}}
	r := NewResolver(quoter, []string{"USDT0", "USDHL"}, nil, "USDC", nil)

	factor := r.Resolve(context.Background(), "FEUSD")

	assert.Equal(t, RouteDirectMarket, factor.ResolvedVia)
	assert.True(t, factor.USDFactor.Equal(decimal.RequireFromString("0.9991")),
		"first listed quote must win, got %s", factor.USDFactor)
	require.Len(t, quoter.midCalls, 1, "no averaging, no further lookups after a hit")
}

func TestResolve_SkipsSelfQuote(t *testing.T) {
	quoter := &fakeQuoter{mids: map[string]string{
		"USDT0/USDHL": "1.0002",
	}}
	r := NewResolver(quoter, []string{"USDT0", "USDHL"}, nil, "USDC", nil)

	factor := r.Resolve(context.Background(), "USDT0")

	assert.Equal(t, RouteDirectMarket, factor.ResolvedVia)
	require.Len(t, quoter.midCalls, 1)
	assert.Equal(t, "USDT0/USDHL", quoter.midCalls[0])
}

func TestResolve_AddressPairFallback(t *testing.T) {
	quoter := &fakeQuoter{pairMids: map[string]string{
		"0xfe01/0xusdc": "0.9987",
	}}
	addresses := map[string]string{"FEUSD": "0xfe01", "USDC": "0xusdc"}
	r := NewResolver(quoter, []string{"USDT0"}, addresses, "USDC", nil)

	factor := r.Resolve(context.Background(), "FEUSD")

	assert.Equal(t, RouteSecondaryMarket, factor.ResolvedVia)
	assert.True(t, factor.USDFactor.Equal(decimal.RequireFromString("0.9987")))
	require.Len(t, quoter.pairCalls, 1)
}

func TestResolve_NeverFails(t *testing.T) {
	// No direct quotes, no addresses configured: the peg is the floor.
	r := NewResolver(&fakeQuoter{}, []string{"USDT0", "USDHL"}, nil, "USDC", nil)

	factor := r.Resolve(context.Background(), "FEUSD")

	assert.Equal(t, RoutePegFallback, factor.ResolvedVia)
	assert.True(t, factor.USDFactor.Equal(decimal.NewFromInt(1)),
		"peg fallback must carry an exact 1.0 factor, got %s", factor.USDFactor)
	assert.Equal(t, "FEUSD", factor.Symbol)
}

func TestResolve_IgnoresNonPositiveMids(t *testing.T) {
	quoter := &fakeQuoter{
		mids: map[string]string{"FEUSD/USDT0": "0"},
		pairMids: map[string]string{
			"0xfe01/0xusdc": "0.998",
		},
	}
	addresses := map[string]string{"FEUSD": "0xfe01", "USDC": "0xusdc"}
	r := NewResolver(quoter, []string{"USDT0"}, addresses, "USDC", nil)

	factor := r.Resolve(context.Background(), "FEUSD")
	assert.Equal(t, RouteSecondaryMarket, factor.ResolvedVia)
}
