// Package spot implements the secondary-market quote source.
//
// It serves two lookups: a mid price for a listed base/quote pair, and a
// mid price for a token address pair on the aggregator. The FX resolver
// uses the first for its direct-market attempts and the second as the
// address-pair fallback.
package spot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/logging"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/metrics"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/sources"
)

const sourceName = "spot"

// Client queries the secondary-market aggregator.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *logging.Logger
}

type midResponse struct {
	Mid       string `json:"mid"`
	Timestamp int64  `json:"timestamp"`
}

// New creates a secondary-market client.
func New(endpoint string, timeout time.Duration, logger *logging.Logger) (*Client, error) {
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// Name returns the source name.
func (c *Client) Name() string {
	return sourceName
}

// Kind returns the upstream class.
func (c *Client) Kind() sources.Kind {
	return sources.KindSecondaryMarket
}

// Mid returns the mid quote for a listed base/quote market.
func (c *Client) Mid(ctx context.Context, base, quote string) (sources.Quote, error) {
	reqURL := fmt.Sprintf("%s/spot/mid?base=%s&quote=%s",
		c.endpoint, url.QueryEscape(base), url.QueryEscape(quote))
	return c.fetchMid(ctx, reqURL, base+"/"+quote)
}

// PairMidByAddress returns the mid quote for a token address pair.
func (c *Client) PairMidByAddress(ctx context.Context, baseAddr, quoteAddr string) (sources.Quote, error) {
	reqURL := fmt.Sprintf("%s/pairs/%s/%s",
		c.endpoint, url.PathEscape(baseAddr), url.PathEscape(quoteAddr))
	return c.fetchMid(ctx, reqURL, baseAddr+"/"+quoteAddr)
}

func (c *Client) fetchMid(ctx context.Context, reqURL, symbol string) (sources.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return sources.Quote{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordSourceError(sourceName)
		return sources.Quote{}, fmt.Errorf("%w: %w", sources.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return sources.Quote{}, fmt.Errorf("%w: %s", sources.ErrSymbolNotFound, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RecordSourceError(sourceName)
		return sources.Quote{}, fmt.Errorf("%w: %d", sources.ErrUnexpectedStatus, resp.StatusCode)
	}

	var body midResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return sources.Quote{}, fmt.Errorf("failed to decode response: %w", err)
	}

	mid, err := decimal.NewFromString(body.Mid)
	if err != nil {
		return sources.Quote{}, fmt.Errorf("%w: mid %q", sources.ErrInvalidResponse, body.Mid)
	}

	observedAt := time.Now()
	if body.Timestamp > 0 {
		observedAt = time.Unix(body.Timestamp, 0)
	}

	quote, err := sources.NewQuote(symbol, mid, sources.KindSecondaryMarket, sourceName, observedAt)
	if err != nil {
		return sources.Quote{}, err
	}
	metrics.RecordSourceFetch(sourceName, symbol)
	return quote, nil
}
