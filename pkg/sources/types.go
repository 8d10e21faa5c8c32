// Package sources provides price source interfaces and quote types.
package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the class of upstream a quote came from
type Kind string

const (
	KindOffchainFeed    Kind = "offchain_feed"
	KindOnchainContract Kind = "onchain_contract"
	KindSecondaryMarket Kind = "secondary_market"
)

// Quote is a price observation for a symbol from a single upstream.
// Age is derived from ObservedAt at read time, never cached.
type Quote struct {
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	Kind       Kind            `json:"kind"`
	Source     string          `json:"source"`
	ObservedAt time.Time       `json:"observed_at"`
}

// NewQuote builds a quote, rejecting non-positive prices.
func NewQuote(symbol string, price decimal.Decimal, kind Kind, source string, observedAt time.Time) (Quote, error) {
	if !price.IsPositive() {
		return Quote{}, fmt.Errorf("%w: %s from %s: %s", ErrInvalidPrice, symbol, source, price)
	}
	return Quote{
		Symbol:     symbol,
		Price:      price,
		Kind:       kind,
		Source:     source,
		ObservedAt: observedAt,
	}, nil
}

// Age returns the quote age relative to now.
func (q Quote) Age(now time.Time) time.Duration {
	return now.Sub(q.ObservedAt)
}

// AgeSeconds returns the quote age in whole seconds at call time.
func (q Quote) AgeSeconds() int64 {
	return int64(time.Since(q.ObservedAt).Seconds())
}

// Source is a single upstream capable of quoting one or more symbols.
// A batch Fetch fails wholesale when the upstream is unreachable;
// individual symbols missing from the response are simply absent
// from the returned map.
type Source interface {
	// Name returns the unique name of this source
	Name() string

	// Kind returns the upstream class of this source
	Kind() Kind

	// Fetch retrieves current quotes for the given symbols
	Fetch(ctx context.Context, symbols []string) (map[string]Quote, error)
}

// FetchOne fetches a single symbol from a source, mapping an absent
// entry to ErrSymbolNotFound.
func FetchOne(ctx context.Context, s Source, symbol string) (Quote, error) {
	quotes, err := s.Fetch(ctx, []string{symbol})
	if err != nil {
		return Quote{}, err
	}
	q, ok := quotes[symbol]
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s on %s", ErrSymbolNotFound, symbol, s.Name())
	}
	return q, nil
}
