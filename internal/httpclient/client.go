// Package httpclient issues GET/POST requests against a fixed base origin
// with browser-like headers and returns the raw response body.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// ErrRequestFailed matches every error returned by Client.
var ErrRequestFailed = errors.New("http request failed")

// RequestError is the single failure type of the transport. Timeouts, DNS
// failures and non-2xx statuses all surface through it.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s %s: status %d", ErrRequestFailed, e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s %s: %v", ErrRequestFailed, e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRequestFailed}
	}
	return []error{ErrRequestFailed, e.Err}
}

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

type Client struct {
	resty  *resty.Client
	logger *slog.Logger
}

// New creates a client bound to opts.BaseURL. Zero values fall back to the
// package defaults.
func New(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}

	headers := map[string]string{
		"User-Agent":                opts.UserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	r := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeaders(headers)

	return &Client{
		resty:  r,
		logger: logger.With("component", "httpclient"),
	}
}

type requestConfig struct {
	headers map[string]string
	query   url.Values
	timeout time.Duration
}

// RequestOption overrides the client defaults for a single request.
type RequestOption func(*requestConfig)

func WithHeader(key, value string) RequestOption {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

func WithQuery(values url.Values) RequestOption {
	return func(c *requestConfig) {
		c.query = values
	}
}

// WithTimeout bounds a single request tighter than the client timeout.
func WithTimeout(d time.Duration) RequestOption {
	return func(c *requestConfig) {
		c.timeout = d
	}
}

// Get fetches path (relative to the base URL, or absolute) and returns the body.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (string, error) {
	return c.do(ctx, resty.MethodGet, path, nil, opts)
}

// Post sends body as JSON to path and returns the response body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (string, error) {
	opts = append([]RequestOption{WithHeader("Content-Type", "application/json")}, opts...)
	return c.do(ctx, resty.MethodPost, path, body, opts)
}

func (c *Client) do(ctx context.Context, method, path string, body any, opts []RequestOption) (string, error) {
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	req := c.resty.R().SetContext(ctx)
	if cfg.headers != nil {
		req.SetHeaders(cfg.headers)
	}
	if cfg.query != nil {
		req.SetQueryParamsFromValues(cfg.query)
	}
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		return "", &RequestError{Method: method, URL: path, Err: err}
	}

	c.logger.Debug("request completed",
		"method", method,
		"url", resp.Request.URL,
		"status", resp.StatusCode(),
		"duration", time.Since(start),
	)

	if !resp.IsSuccess() {
		return "", &RequestError{Method: method, URL: path, StatusCode: resp.StatusCode()}
	}

	return resp.String(), nil
}
