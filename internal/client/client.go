// Package client talks to the TruthLens analysis service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/truthlens/internal/httpclient"
	"github.com/abelbrown/truthlens/internal/logging"
)

const (
	// maxBody caps how much of a response body is read.
	maxBody = 10 << 20

	defaultHealthTimeout = 5 * time.Second
)

var (
	// ErrMalformed wraps a 2xx response whose body could not be decoded.
	ErrMalformed = errors.New("malformed response body")

	// ErrRateLimited is returned when the client-side request budget is spent
	// and waiting would outlive the context.
	ErrRateLimited = errors.New("client-side rate limit reached")
)

// StatusError is a non-2xx response. Message is the body's "error" field,
// empty when the body had none.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

// Client is a TruthLens API client. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	probe   *http.Client // health checks
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the shared pooled client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http, c.probe = hc, hc }
}

// WithHealthTimeout bounds health checks independently of the caller's
// context.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) { c.probe = httpclient.WithTimeout(d) }
}

// WithRequestsPerMinute installs a client-side limiter. Zero or negative
// disables it.
func WithRequestsPerMinute(rpm int) Option {
	return func(c *Client) {
		if rpm <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 3)
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpclient.Default(),
		probe:   httpclient.WithTimeout(defaultHealthTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("client: request cancelled: %w", ctx.Err())
			}
			return nil, fmt.Errorf("client: %w: %v", ErrRateLimited, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("client: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("client: request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("client: request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("client: failed to read response: %w", err)
	}

	logging.Debug("api call", "method", method, "path", path, "status", resp.StatusCode,
		"bytes", len(data), "took", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// doJSON is do plus decoding of the 2xx body into out.
func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	data, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: %s %s: %w: %v", method, path, ErrMalformed, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} from an error body.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return strings.TrimSpace(e.Error)
}
