package poller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// UpdatesPath is the garden server route polled on every cycle.
const UpdatesPath = "/api/getUpdates"

// connection pooling limits; a session only ever talks to one host
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 2
	defaultMaxConnsPerHost     = 4
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// Fetcher is the I/O port a [Session] polls through.
//
// GetUpdates performs one request for the given tick and watcher ID. It
// returns the raw response body on a success status. Non-success statuses
// and network failures are reported as a *[TransportError].
type Fetcher interface {
	GetUpdates(ctx context.Context, tick float64, watcherID string) ([]byte, error)
}

// Client is an HTTP client for the garden server's update endpoint.
//
// Client applies an optional per-request timeout via context rather than a
// global client timeout. Response bodies are limited to 1MB.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a [Client] targeting baseURL (e.g. "http://localhost:3000").
//
// A zero timeout leaves requests bounded only by the caller's context and the
// transport's own dial and TLS timeouts.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// UpdatesURL builds the polling URL for tick and, when non-empty, watcherID.
func (c *Client) UpdatesURL(tick float64, watcherID string) string {
	q := url.Values{}
	q.Set("tick", FormatNumber(tick))
	if watcherID != "" {
		q.Set("watcherId", watcherID)
	}
	return c.baseURL + UpdatesPath + "?" + q.Encode()
}

// GetUpdates implements [Fetcher].
//
// The body of a non-success response is discarded unread.
func (c *Client) GetUpdates(ctx context.Context, tick float64, watcherID string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.UpdatesURL(tick, watcherID), nil)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return body, nil
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// FormatNumber renders a finite number the way the garden protocol expects:
// integers without a fractional part, other values in shortest form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
