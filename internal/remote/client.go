// Package remote is the single gateway to the store API. Every outbound call
// goes through Client, which attaches the bearer credential read at call time.
package remote

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

	"go.uber.org/zap"

	"github.com/spec-kit/store-dashboard/internal/observability"
	"github.com/spec-kit/store-dashboard/internal/session"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CredentialSource supplies the current credential for each request.
type CredentialSource interface {
	Current() (session.Credential, bool)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithLogger sets the logger used for call tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics records call latency.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client calls the store API. It is safe for concurrent use; WithCredentials
// returns a cheap copy bound to one session.
type Client struct {
	base    *url.URL
	http    HTTPDoer
	creds   CredentialSource
	logger  *zap.Logger
	metrics *observability.Metrics
}

// New builds a client bound to cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithCredentials returns a copy of c that authenticates with src.
func (c *Client) WithCredentials(src CredentialSource) *Client {
	cp := *c
	cp.creds = src
	return &cp
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Do sends one request. body, when non-nil, is JSON encoded; out, when
// non-nil, receives the decoded JSON response.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if cred, ok := c.creds.Current(); ok {
			req.Header.Set("Authorization", cred.BearerHeader())
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordRemoteCall(method, 0, time.Since(start))
		msg := "store API unreachable"
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			msg = "request canceled"
		} else if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = "store API timed out"
		}
		c.logger.Warn("remote call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &APIError{Method: method, Path: path, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.RecordRemoteCall(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Message: "unreadable response", Err: err}
	}

	c.logger.Debug("remote call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Message: "unexpected response from store API", Err: err}
	}
	return nil
}

type errorEnvelope struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func errorMessage(status int, data []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if len(env.Errors) > 0 && env.Errors[0].Message != "" {
			return env.Errors[0].Message
		}
	}
	return http.StatusText(status)
}

// Ping reports whether the store API answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	err := c.Do(ctx, http.MethodGet, "/", nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return nil
	}
	return err
}
