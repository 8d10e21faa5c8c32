// Package feed implements the off-chain HTTP price feed source.
//
// The feed exposes a batch endpoint returning JSON keyed by symbol.
// Several mirror gateways serve the same data; they are tried in the
// configured order and the first reachable one wins.
package feed

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

const sourceName = "feed"

// Source fetches batch quotes from mirrored feed gateways.
type Source struct {
	mirrors []string
	client  *http.Client
	logger  *logging.Logger
}

// feedEntry is one symbol's payload in the gateway response.
type feedEntry struct {
	Price     string `json:"price"`
	Timestamp int64  `json:"timestamp"` // unix seconds of the upstream observation
}

// New creates a feed source over the given mirror gateways.
func New(mirrors []string, timeout time.Duration, logger *logging.Logger) (*Source, error) {
	if len(mirrors) == 0 {
		return nil, ErrNoMirrorsConfigured
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Source{
		mirrors: mirrors,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// Name returns the source name.
func (s *Source) Name() string {
	return sourceName
}

// Kind returns the upstream class.
func (s *Source) Kind() sources.Kind {
	return sources.KindOffchainFeed
}

// Fetch requests the whole symbol batch in one call per mirror. The batch
// fails only when every mirror is unreachable; symbols missing from an
// otherwise good response are reported individually by their absence.
func (s *Source) Fetch(ctx context.Context, symbols []string) (map[string]sources.Quote, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: empty symbol batch", sources.ErrInvalidResponse)
	}

	var lastErr error
	for i, mirror := range s.mirrors {
		quotes, err := s.fetchFromMirror(ctx, mirror, symbols)
		if err != nil {
			lastErr = err
			s.logger.Warn("Feed mirror failed, trying next",
				"mirror", mirror, "remaining", len(s.mirrors)-i-1, "error", err)
			metrics.RecordSourceError(sourceName)
			continue
		}
		return quotes, nil
	}

	return nil, fmt.Errorf("%w: all %d feed mirrors failed: %w",
		sources.ErrSourceUnavailable, len(s.mirrors), lastErr)
}

func (s *Source) fetchFromMirror(ctx context.Context, mirror string, symbols []string) (map[string]sources.Quote, error) {
	reqURL := fmt.Sprintf("%s/prices?symbols=%s",
		strings.TrimRight(mirror, "/"), url.QueryEscape(strings.Join(symbols, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", sources.ErrUnexpectedStatus, resp.StatusCode)
	}

	var body map[string]feedEntry
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty price map", sources.ErrInvalidResponse)
	}

	quotes := make(map[string]sources.Quote, len(symbols))
	for _, symbol := range symbols {
		entry, ok := body[symbol]
		if !ok {
			s.logger.Warn("Symbol missing from feed response", "symbol", symbol, "mirror", mirror)
			continue
		}

		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			s.logger.Warn("Unparseable feed price", "symbol", symbol, "price", entry.Price)
			continue
		}
		if entry.Timestamp <= 0 {
			s.logger.Warn("Feed entry without timestamp", "symbol", symbol)
			continue
		}

		quote, err := sources.NewQuote(symbol, price, sources.KindOffchainFeed, sourceName, time.Unix(entry.Timestamp, 0))
		if err != nil {
			s.logger.Warn("Rejected feed quote", "symbol", symbol, "error", err)
			continue
		}
		quotes[symbol] = quote
		metrics.RecordSourceFetch(sourceName, symbol)
	}

	return quotes, nil
}
