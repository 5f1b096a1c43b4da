// Package backend is a client for the fitplate REST backend. Every response arrives
// in an Envelope: calls return only the envelope's data, or an error that classifies
// the failure (see errors.go).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds ordinary backend calls
const DefaultTimeout = 15 * time.Second

// DefaultLongTimeout bounds calls that the backend is known to process slowly, i.e.
// meal plan generation and body image analysis
const DefaultLongTimeout = 90 * time.Second

// Client makes authenticated calls to the backend on behalf of dashboard users. The
// caller's access token is passed explicitly to each call.
type Client struct {
	baseUrl     string
	http        *http.Client
	timeout     time.Duration
	longTimeout time.Duration
	logger      *slog.Logger
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the timeout applied to ordinary calls
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLongTimeout sets the timeout applied to slow calls
func WithLongTimeout(d time.Duration) Option {
	return func(c *Client) { c.longTimeout = d }
}

// WithLogger sets a structured logger for the client
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient initializes a client for the backend rooted at baseUrl, e.g.
// 'https://api.fitplate.app/api/v1'
func NewClient(baseUrl string, opts ...Option) *Client {
	c := &Client{
		baseUrl:     strings.TrimSuffix(baseUrl, "/"),
		http:        &http.Client{},
		timeout:     DefaultTimeout,
		longTimeout: DefaultLongTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Ping verifies that the backend is reachable. Any HTTP response counts: we only care
// that something is listening at the base URL.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseUrl, nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return ErrTimeout
		}
		return err
	}
	res.Body.Close()
	return nil
}

// request describes a single call to the backend
type request struct {
	method      string
	path        string
	query       url.Values
	token       string
	body        io.Reader
	contentType string
	long        bool
}

// do sends a request and decodes the data field of the response envelope into out,
// which may be nil if the caller doesn't need the data
func (c *Client) do(ctx context.Context, r request, out any) error {
	timeout := c.timeout
	if r.long {
		timeout = c.longTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.baseUrl + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("failed to prepare request for %s %s: %w", r.method, r.path, err)
	}
	req.Header.Set("accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("content-type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("authorization", "Bearer "+r.token)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("backend request timed out", "method", r.method, "path", r.path, "timeout", timeout)
			return fmt.Errorf("%w: %s %s after %s", ErrTimeout, r.method, r.path, timeout)
		}
		return fmt.Errorf("%s %s failed: %w", r.method, r.path, err)
	}
	defer res.Body.Close()

	c.logger.Debug("backend request", "method", r.method, "path", r.path, "status", res.StatusCode, "dur", time.Since(start))
	return decodeResponse(res, out)
}

// decodeResponse classifies the response by status code and envelope, then unwraps
// the envelope's data into out
func decodeResponse(res *http.Response, out any) error {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope Envelope[json.RawMessage]
	envelopeErr := json.Unmarshal(body, &envelope)
	message := envelope.Message
	if envelopeErr != nil {
		message = strings.TrimSpace(string(body))
	}

	switch res.StatusCode {
	case http.StatusUnauthorized:
		return &Error{ErrUnauthorized, res.StatusCode, message}
	case http.StatusForbidden:
		return &Error{ErrForbidden, res.StatusCode, message}
	case http.StatusNotFound:
		return &Error{ErrNotFound, res.StatusCode, message}
	}
	if res.StatusCode >= http.StatusBadRequest {
		if envelopeErr == nil && !envelope.Success && message != "" {
			return &Error{ErrRejected, res.StatusCode, message}
		}
		return &Error{ErrUnexpectedStatus, res.StatusCode, message}
	}

	if envelopeErr != nil {
		return fmt.Errorf("failed to decode response envelope: %w", envelopeErr)
	}
	if !envelope.Success {
		return &Error{ErrRejected, res.StatusCode, message}
	}
	if out == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// jsonBody encodes v as a request body
func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(b), nil
}
