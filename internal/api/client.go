// Package api is the client for the Shelfmate backend REST API. All bodies are JSON.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	domainerrors "github.com/shelfmateapp/shelfmate/internal/errors"
	"github.com/shelfmateapp/shelfmate/internal/id"
	"github.com/shelfmateapp/shelfmate/internal/ratelimit"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRPS     = 5.0
	defaultBurst   = 10

	// Cap on error bodies kept for messages.
	maxErrorBody = 4 << 10

	userAgent = "Shelfmate/1.0"
)

// Options configures a Client.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	RPS      float64
	Burst    int
	DeviceID string
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Client is a rate-limited backend API client.
type Client struct {
	baseURL  string
	deviceID string
	http     *http.Client
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// New creates a client. The HTTP client carries a timeout and a cookie jar that honors the public suffix list.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("api: base URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RPS <= 0 {
		opts.RPS = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		deviceID: opts.DeviceID,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Jar:       jar,
			Transport: opts.Transport,
		},
		limiter: ratelimit.New(opts.RPS, opts.Burst),
		logger:  logger,
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient exposes the underlying HTTP client for auxiliary downloads (covers).
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// resourceOf returns the first path segment, which keys the rate limiter.
func resourceOf(path string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return seg
}

// do executes a request with rate limiting. in is JSON-encoded when non-nil; out is decoded when non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx, resourceOf(path)); err != nil {
		return wrapError(op, method, path, domainerrors.Network(err, "rate limit wait"))
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return wrapError(op, method, path, domainerrors.Wrap(err, domainerrors.CodeInternal, "encode request"))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return wrapError(op, method, path, domainerrors.Wrap(err, domainerrors.CodeInternal, "create request"))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reqID := id.RequestID(); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-ID", c.deviceID)
	}

	c.logger.Debug("api request", "op", op, "method", method, "path", path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(op, method, path, domainerrors.Network(err, "request failed"))
	}
	defer resp.Body.Close()

	c.logger.Debug("api response",
		"op", op,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return wrapError(op, method, path, domainerrors.FromHTTPStatus(resp.StatusCode, errorMessage(resp.StatusCode, raw)))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return wrapError(op, method, path, domainerrors.Wrap(err, domainerrors.CodeBackend, "decode response"))
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// errorMessage prefers the backend's own message, falling back to the status text.
func errorMessage(status int, raw []byte) string {
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return fmt.Sprintf("backend returned %d %s", status, http.StatusText(status))
}
