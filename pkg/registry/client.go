// Package registry implements the downstream oracle registry client:
// deployed-set introspection and price publishing with transient-aware
// retries.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/logging"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/metrics"
)

// StatusOK is the registry's success status.
const StatusOK = "ok"

// Response is the registry's structured reply to a publish call.
type Response struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

// UnmarshalJSON tolerates non-string response payloads: the registry
// replies with a string reason on failure but an object on success.
func (r *Response) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status   string          `json:"status"`
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Status = raw.Status

	if len(raw.Response) == 0 {
		r.Response = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Response, &s); err == nil {
		r.Response = s
	} else {
		r.Response = string(raw.Response)
	}
	return nil
}

// Client talks to the oracle registry over HTTPS.
type Client struct {
	endpoint    string
	client      *http.Client
	maxAttempts int
	logger      *logging.Logger

	// waitFn is swapped out in tests to avoid real sleeps.
	waitFn func(ctx context.Context, d time.Duration) error
}

// NewClient creates a registry client.
func NewClient(endpoint string, timeout time.Duration, maxAttempts int, logger *logging.Logger) (*Client, error) {
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Client{
		endpoint:    strings.TrimRight(endpoint, "/"),
		client:      &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		logger:      logger,
		waitFn:      waitCtx,
	}, nil
}

type metaRequest struct {
	Type string `json:"type"`
	Dex  string `json:"dex"`
}

type universeEntry struct {
	Name         string `json:"name"`
	SzDecimals   int    `json:"szDecimals"`
	OnlyIsolated bool   `json:"onlyIsolated"`
}

type metaResponse struct {
	Universe []universeEntry `json:"universe"`
}

// Deployed returns the set of pair identifiers currently registered under
// the namespace. Publishing is restricted to this set; attempts for
// unregistered pairs are skipped upstream, not retried.
func (c *Client) Deployed(ctx context.Context, namespace string) (map[string]bool, error) {
	body, err := json.Marshal(metaRequest{Type: "meta", Dex: namespace})
	if err != nil {
		return nil, fmt.Errorf("failed to encode meta request: %w", err)
	}

	data, err := c.post(ctx, c.endpoint+"/info", body)
	if err != nil {
		return nil, fmt.Errorf("meta request failed: %w", err)
	}

	var meta metaResponse
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode meta response: %w", err)
	}

	prefix := namespace + ":"
	deployed := make(map[string]bool, len(meta.Universe))
	for _, asset := range meta.Universe {
		if strings.HasPrefix(asset.Name, prefix) {
			deployed[strings.TrimPrefix(asset.Name, prefix)] = true
		}
	}
	return deployed, nil
}

type setOracleAction struct {
	Type      string            `json:"type"`
	Dex       string            `json:"dex"`
	OraclePxs map[string]string `json:"oraclePxs"`
	MarkPxs   map[string]string `json:"markPxs"`
}

type exchangeRequest struct {
	Action setOracleAction `json:"action"`
}

// SetOracle publishes a price mapping, retrying known-transient failures
// with class-specific linear waits until maxAttempts is exhausted. Any
// other rejection returns immediately. The last observed response is
// always returned, success or not.
func (c *Client) SetOracle(ctx context.Context, namespace string, mapping Mapping) (Response, error) {
	var last Response

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.postOracle(ctx, namespace, mapping)
		if err != nil {
			// Transport failures retry like registry transients and
			// spend from the same attempt budget.
			last = Response{Status: "err", Response: err.Error()}
			metrics.RecordPublishAttempt(networkClass.name)
			c.logger.Warn("Oracle publish transport error",
				"attempt", attempt, "max_attempts", c.maxAttempts, "error", err)
			if attempt < c.maxAttempts {
				if werr := c.waitTransient(ctx, networkClass, attempt); werr != nil {
					return last, werr
				}
			}
			continue
		}

		last = resp
		if resp.Status == StatusOK {
			metrics.RecordPublishAttempt("success")
			metrics.RecordPublishSuccess()
			return resp, nil
		}

		class, transient := classifyTransient(resp.Response)
		if !transient {
			metrics.RecordPublishAttempt("terminal")
			return resp, fmt.Errorf("%w: %s", ErrRegistryTerminal, resp.Response)
		}

		metrics.RecordPublishAttempt(class.name)
		c.logger.Warn("Oracle publish rejected with transient error",
			"class", class.name, "attempt", attempt,
			"max_attempts", c.maxAttempts, "response", resp.Response)
		if attempt < c.maxAttempts {
			if werr := c.waitTransient(ctx, class, attempt); werr != nil {
				return last, werr
			}
		}
	}

	return last, fmt.Errorf("%w after %d attempts: %s", ErrAttemptsExhausted, c.maxAttempts, last.Response)
}

func (c *Client) postOracle(ctx context.Context, namespace string, mapping Mapping) (Response, error) {
	body, err := json.Marshal(exchangeRequest{
		Action: setOracleAction{
			Type:      "perpDeploySetOracle",
			Dex:       namespace,
			OraclePxs: mapping,
			MarkPxs:   mapping,
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode oracle action: %w", err)
	}

	data, err := c.post(ctx, c.endpoint+"/exchange", body)
	if err != nil {
		return Response{}, err
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, fmt.Errorf("failed to decode registry response: %w", err)
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

func (c *Client) waitTransient(ctx context.Context, class transientClass, attempt int) error {
	d := class.wait(attempt)
	metrics.RecordPublishWait(d)
	c.logger.Debug("Waiting before publish retry",
		"class", class.name, "attempt", attempt, "wait", d.String())
	return c.waitFn(ctx, d)
}

// waitCtx sleeps for d or until the context is canceled, whichever
// comes first.
func waitCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
