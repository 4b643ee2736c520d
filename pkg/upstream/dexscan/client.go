// Package dexscan implements the upstream.Provider contract against the
// Dexscan HTTP API, which serves token prices, pool OHLCV bars and pool
// trade feeds across EVM chains and Solana.
package dexscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/incepthink/aggtrade-backend-sub003/pkg/ratelimit"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/upstream"
)

const (
	defaultBaseURL     = "https://api.dexscan.io/v1"
	defaultHTTPTimeout = 10 * time.Second

	apiKeyHeader = "X-API-KEY"
)

// Client wraps access to the Dexscan REST endpoints. Every request passes
// through the configured limiter, and every call is retried under the
// configured retrier, so no code path can sidestep either.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	retrier    *upstream.Retrier
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default API root.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithAPIKey sets the key sent on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithLimiter routes all requests through the given limiter.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithRetrier overrides the default retry behaviour.
func WithRetrier(r *upstream.Retrier) Option {
	return func(c *Client) {
		if r != nil {
			c.retrier = r
		}
	}
}

// NewClient constructs a Dexscan API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    ratelimit.NoLimit(),
		retrier:    upstream.NewRetrier(upstream.RetryConfig{}),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Price fetches the current USD price of a token.
func (c *Client) Price(ctx context.Context, chain, address string) (*PriceData, error) {
	params := url.Values{}
	params.Set("chain", chain)
	params.Set("address", address)
	var data PriceData
	if err := c.doRequest(ctx, "/token/price", params, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// PriceHistory fetches one page of historical token prices.
func (c *Client) PriceHistory(ctx context.Context, q upstream.Query) ([]PriceItem, error) {
	var data PriceHistoryData
	if err := c.doRequest(ctx, "/token/price/history", pageParams(q, false), &data); err != nil {
		return nil, err
	}
	return data.Items, nil
}

// OHLCV fetches one page of OHLCV bars for a pool.
func (c *Client) OHLCV(ctx context.Context, q upstream.Query) ([]OHLCVItem, error) {
	var data OHLCVData
	if err := c.doRequest(ctx, "/pool/ohlcv", pageParams(q, true), &data); err != nil {
		return nil, err
	}
	return data.Items, nil
}

// Trades fetches one page of executed swaps for a pool.
func (c *Client) Trades(ctx context.Context, q upstream.Query) ([]TradeItem, error) {
	var data TradesData
	if err := c.doRequest(ctx, "/pool/trades", pageParams(q, false), &data); err != nil {
		return nil, err
	}
	return data.Items, nil
}

func pageParams(q upstream.Query, withResolution bool) url.Values {
	params := url.Values{}
	params.Set("chain", q.Chain)
	params.Set("address", q.Address)
	if withResolution && q.Resolution != "" {
		params.Set("resolution", q.Resolution)
	}
	if q.From > 0 {
		params.Set("time_from", strconv.FormatInt(q.From, 10))
	}
	if q.To > 0 {
		params.Set("time_to", strconv.FormatInt(q.To, 10))
	}
	params.Set("offset", strconv.Itoa(q.Offset))
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	return params
}

// doRequest issues one retried GET against path and decodes the envelope
// data into result.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result interface{}) error {
	endpoint := strings.TrimSuffix(c.baseURL, "/") + path
	return c.retrier.Do(ctx, func() error {
		return c.once(ctx, endpoint, params, result)
	})
}

func (c *Client) once(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	release, err := c.limiter.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("dexscan: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("dexscan: %w: %v", upstream.ErrUnavailable, err)
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("dexscan: read response: %w", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &upstream.StatusError{
			Provider: "dexscan",
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("dexscan: decode response: %w", err)
	}
	if !envelope.Success {
		if strings.Contains(strings.ToLower(envelope.Message), "no data") {
			return upstream.ErrNoData
		}
		return fmt.Errorf("dexscan: api error: %s", envelope.Message)
	}
	if result != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("dexscan: decode data: %w", err)
		}
	}
	return nil
}
