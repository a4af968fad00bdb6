package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/httputil"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/observability"
)

// RequestIDHeader carries a per-call identifier. Retries of one call share it.
const RequestIDHeader = "X-Request-ID"

// Client provides shared HTTP functionality for service clients.
// It handles JSON encoding, default headers, retries and status checks.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http     *http.Client
	headers  map[string]string
	timeout  time.Duration
	attempts int
	delay    time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithHeaders sets headers applied to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) { c.headers = headers }
}

// WithTimeout bounds single-shot requests. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetry retries transient failures of single-shot requests.
// attempts counts the first try; 1 disables retries.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.delay = delay
	}
}

// NewClient creates a Client. By default requests are attempted once and
// bounded by [DefaultTimeout].
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:  DefaultTimeout,
		attempts: 1,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient(c.timeout)
	}
	return c
}

// Post sends body as JSON and returns the full response body.
// Transient failures are retried according to [WithRetry].
func (c *Client) Post(ctx context.Context, url string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	id := uuid.NewString()
	var data []byte
	err = httputil.Retry(ctx, c.attempts, c.delay, func() error {
		resp, err := c.do(ctx, url, id, payload)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return httputil.Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// PostStream sends body as JSON and returns the open response body for
// incremental reading. It is never retried. Canceling ctx aborts the read
// and releases the connection; the caller must still close the body.
func (c *Client) PostStream(ctx context.Context, url string, body any) (io.ReadCloser, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.do(ctx, url, uuid.NewString(), payload)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, url, id string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(RequestIDHeader, id)

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	err := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	if httputil.IsRetryableStatus(resp.StatusCode) {
		return httputil.Retryable(err)
	}
	return err
}
