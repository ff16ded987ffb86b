// Package api is the typed client for the shop backend's REST surface. It
// attaches the session's bearer credential, maps HTTP failures onto the
// client's error taxonomy, and fails fast through a circuit breaker while the
// backend is down. It never retries: a failed call is surfaced as-is and
// re-acting is the caller's decision.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the bearer credential for each request. The client
// only attaches it; it never constructs or validates one.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	base    *url.URL
	http    *http.Client
	creds   TokenSource
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

type Option func(*Client)

// WithHTTPClient replaces the default instrumented transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout caps each request round-trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(baseURL string, creds TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url %q: %w", baseURL, err)
	}
	c := &Client{
		base:  u,
		creds: creds,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "shop-backend",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Business rejections (4xx) are the backend working as intended;
		// only unavailability counts against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
	})
	return c, nil
}

// do runs one request through the breaker and decodes the JSON response into
// out when out is non-nil. Any non-2xx response comes back as *Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any, extra http.Header) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	u := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	tok, err := c.creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("resolve bearer credential: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range extra {
		for _, v := range vv {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, &Error{Kind: ErrUnavailable, Message: err.Error()}
		}
		if resp.StatusCode >= 400 {
			defer resp.Body.Close()
			return nil, newErrorFromResponse(resp)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &Error{Kind: ErrUnavailable, Message: "circuit breaker open"}
		}
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
