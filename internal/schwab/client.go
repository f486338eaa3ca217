// Package schwab is a thin client for the Schwab market-data API. It only
// covers the two endpoints the scanner needs, equity quotes and option
// chains, and decodes straight into the marketdata types.
package schwab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mdewey/buywrite/internal/marketdata"
	"go.uber.org/zap"
)

// DefaultBaseURL is the production market-data endpoint.
const DefaultBaseURL = "https://api.schwabapi.com/marketdata/v1"

// TokenSource supplies bearer tokens for API calls. Invalidate drops any
// cached token so the next Token call fetches a fresh one; the client invokes
// it after a 401.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// StatusError reports a non-2xx API response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("schwab: %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// Recorder observes API traffic. It matches the metrics registry so the
// client does not depend on it directly.
type Recorder interface {
	RecordAPIRequest(endpoint, status string, duration float64)
}

// Client talks to the market-data API with bearer-token auth.
type Client struct {
	http     *http.Client
	baseURL  string
	tokens   TokenSource
	logger   *zap.Logger
	recorder Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, for tests and sandboxes.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRecorder attaches request instrumentation.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// NewClient creates a market-data client.
func NewClient(tokens TokenSource, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: DefaultBaseURL,
		tokens:  tokens,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quotes fetches quote, fundamental, and reference data for the given
// symbols, keyed by symbol.
func (c *Client) Quotes(ctx context.Context, symbols []string) (marketdata.QuoteResponse, error) {
	if len(symbols) == 0 {
		return marketdata.QuoteResponse{}, nil
	}
	q := url.Values{}
	q.Set("symbols", strings.Join(symbols, ","))
	q.Set("fields", "quote,fundamental,reference")
	q.Set("indicative", "false")

	var out marketdata.QuoteResponse
	if err := c.get(ctx, "/quotes?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("fetching quotes: %w", err)
	}
	return out, nil
}

// Chain fetches the full option chain for one symbol.
func (c *Client) Chain(ctx context.Context, symbol string) (*marketdata.Chain, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}
	q := url.Values{}
	q.Set("symbol", symbol)

	var out marketdata.Chain
	if err := c.get(ctx, "/chains?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("fetching chain for %s: %w", symbol, err)
	}
	if out.Status != "" && out.Status != "SUCCESS" {
		return nil, fmt.Errorf("chain for %s: status %s", symbol, out.Status)
	}
	return &out, nil
}

// get performs an authenticated GET, retrying once with a fresh token when
// the API answers 401.
func (c *Client) get(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, path)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		c.logger.Debug("token rejected, retrying with a fresh one", zap.String("path", path))
		c.tokens.Invalidate()
		if resp, err = c.do(ctx, path); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, URL: path, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring token: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if c.recorder != nil {
		c.recorder.RecordAPIRequest(endpointOf(path), statusClass(resp, err), time.Since(started).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// endpointOf reduces a request path to its metric label, e.g. "quotes".
func endpointOf(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(trimmed, "?/"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}

func statusClass(resp *http.Response, err error) string {
	if err != nil {
		return "error"
	}
	switch {
	case resp.StatusCode >= 500:
		return "5xx"
	case resp.StatusCode >= 400:
		return "4xx"
	case resp.StatusCode >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
