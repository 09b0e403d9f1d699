package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/kabar-gateway/pkg/config"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
)

// UpstreamObserver records latency and status of backend calls.
type UpstreamObserver interface {
	ObserveUpstreamCall(method, path string, status int, duration time.Duration)
}

// Client is the typed HTTP client for the upstream news API. Every call is
// bounded by the configured timeout so one slow dependency cannot hang a
// request indefinitely.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	observer UpstreamObserver
}

// Option configures the client.
type Option func(*Client)

// WithObserver attaches a metrics observer.
func WithObserver(o UpstreamObserver) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithHTTPClient overrides the underlying http.Client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New constructs a client from backend configuration.
func New(cfg config.BackendConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the configured upstream root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do issues a request against the backend. A non-empty token is attached as
// a bearer Authorization header. The caller owns the response body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType, token string) (*http.Response, error) {
	target := c.baseURL + ensureLeadingSlash(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build backend request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Warn("backend_call_failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		if c.observer != nil {
			c.observer.ObserveUpstreamCall(method, path, 0, duration)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "backend unreachable")
	}
	if c.observer != nil {
		c.observer.ObserveUpstreamCall(method, path, resp.StatusCode, duration)
	}
	return resp, nil
}

// Forward relays a request with caller-provided headers copied verbatim.
// Used by the proxy layer, which owns its own header derivation rules.
func (c *Client) Forward(ctx context.Context, method, path string, query url.Values, body io.Reader, header http.Header) (*http.Response, error) {
	target := c.baseURL + ensureLeadingSlash(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build backend request")
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Warn("backend_forward_failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		if c.observer != nil {
			c.observer.ObserveUpstreamCall(method, path, 0, duration)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "backend unreachable")
	}
	if c.observer != nil {
		c.observer.ObserveUpstreamCall(method, path, resp.StatusCode, duration)
	}
	return resp, nil
}

// DoJSON issues a request with an optional JSON body and decodes a JSON
// response into out. Non-2xx responses become typed errors carrying the
// backend's status and message.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, token string, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode backend payload")
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	resp, err := c.Do(ctx, method, path, query, body, contentType, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "read backend response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromBody(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "malformed backend response")
	}
	return nil
}

// GetJSON is shorthand for a GET with DoJSON semantics.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, token string, out interface{}) error {
	return c.DoJSON(ctx, http.MethodGet, path, query, token, nil, out)
}

// PostJSON is shorthand for a POST with DoJSON semantics.
func (c *Client) PostJSON(ctx context.Context, path string, token string, in, out interface{}) error {
	return c.DoJSON(ctx, http.MethodPost, path, nil, token, in, out)
}

func errorFromBody(status int, raw []byte) error {
	message := ""
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message != "" {
			message = payload.Message
		} else if payload.Error != "" {
			message = payload.Error
		}
	}
	if message == "" {
		message = fmt.Sprintf("backend returned status %d", status)
	}
	return &appErrors.Error{Code: "BACKEND_ERROR", Status: status, Message: message}
}

func ensureLeadingSlash(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
