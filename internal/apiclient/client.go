// Package apiclient is the storefront's single HTTP pipeline to the backend.
// It resolves relative paths against a base address and attaches the stored
// bearer credential to every request that does not opt out.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/hongminglow/storefront/internal/apierr"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/metrics"
)

const maxBodyBytes = 8 << 20

// RequestIDHeader is set on every outgoing request.
const RequestIDHeader = "X-Request-ID"

// TokenSource yields the bearer credential. An empty token with a nil error
// means there is none.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Config holds client configuration.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     logrus.FieldLogger
}

// Client issues JSON requests against the backend.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	tokens     TokenSource
	log        logrus.FieldLogger
}

// New creates a client. BaseURL is required.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("base URL is required")
	}
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Client{
		base:       base,
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		log:        log.WithField("component", "apiclient"),
	}, nil
}

type requestConfig struct {
	skipAuth bool
	header   http.Header
}

// Option adjusts a single request.
type Option func(*requestConfig)

// SkipAuth leaves the Authorization header off the request.
func SkipAuth() Option {
	return func(rc *requestConfig) { rc.skipAuth = true }
}

// WithHeader sets an extra request header.
func WithHeader(key, value string) Option {
	return func(rc *requestConfig) { rc.header.Set(key, value) }
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...Option) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...Option) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

// Do sends one request. Non-2xx responses come back as *apierr.StatusError and
// failures before a response as *apierr.TransportError; nothing is retried.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...Option) (*Response, error) {
	rc := requestConfig{header: make(http.Header)}
	for _, opt := range opts {
		opt(&rc)
	}

	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	for key, values := range rc.header {
		req.Header[key] = values
	}

	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": req.Header.Get(RequestIDHeader),
	})
	if !rc.skipAuth {
		c.authorize(ctx, req, log)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveClientRequest(method, metricPath(path), 0, time.Since(start))
		log.WithError(err).Warn("request failed")
		return nil, &apierr.TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.ObserveClientRequest(method, metricPath(path), resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &apierr.TransportError{Method: method, Path: path, Err: fmt.Errorf("read response: %w", err)}
	}

	log.WithField("status", resp.StatusCode).Debug("response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apierr.StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: raw}
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

// authorize attaches the bearer credential. A missing or unreadable token is
// not fatal; the request simply goes out unauthenticated.
func (c *Client) authorize(ctx context.Context, req *http.Request, log logrus.FieldLogger) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		log.WithError(err).Warn("could not read auth token")
		return
	}
	if token == "" {
		log.Debug("no auth token stored")
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// resolve joins path onto the base address the way the browser client did:
// leading slashes on path are ignored so it always stays under the base.
func (c *Client) resolve(path string) (string, error) {
	rel, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	return c.base.ResolveReference(rel).String(), nil
}

func metricPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.TrimLeft(path, "/")
}

// Response is a successful backend reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Get reads a single field by gjson path.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}
