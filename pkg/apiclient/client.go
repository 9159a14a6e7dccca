// Package apiclient issues HTTP calls against one backend, retrying
// transient failures with exponential backoff and normalizing every
// response into a uniform shape.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/bankprobe/pkg/schema"
)

const contextKey = "context"

// Config configures a Client.
type Config struct {
	// Name is a display name used for logging and correlation IDs.
	Name string

	// BaseURL is the endpoint every path is resolved against.
	BaseURL string

	// Timeout applies to each individual attempt. Defaults to 30s.
	Timeout time.Duration

	// MaxRetries is the default retry budget. Zero means the standard
	// budget of 2; use a per-call override to disable retries entirely.
	MaxRetries int

	// HTTP2 switches the owned transport to HTTP/2.
	HTTP2 bool

	// TLSInsecure skips certificate verification, for test environments
	// fronted by self-signed certificates.
	TLSInsecure bool

	// Logger receives structured request/retry/disposal records.
	// Defaults to a nop logger.
	Logger *zap.Logger

	// OnRetry, when set, is called once for every retry the client
	// performs. Used to feed retry counters.
	OnRetry func()
}

// RequestOptions carries the optional parts of a single invocation.
type RequestOptions struct {
	// Body is JSON-serialized and sent as the request body.
	Body any

	// Query is appended to the path as a URL-encoded query string.
	Query map[string]string

	// Retries overrides the client's retry budget for this call only.
	Retries *int
}

// Client issues requests against one configured base endpoint. The
// underlying request context is created on first use and recreated
// whenever credentials or headers change, unless the client is bound to a
// browser session, which then owns the context's lifetime.
type Client struct {
	name     string
	baseURL  string
	timeout  time.Duration
	http2    bool
	insecure bool
	policy   RetryPolicy
	logger   *zap.Logger
	onRetry  func()

	mu        sync.Mutex
	headers   map[string]string
	authToken string
	rc        *RequestContext
	bound     bool
	gen       uint64

	initGroup singleflight.Group
	rng       *rand.Rand
	rngMu     sync.Mutex
}

// New creates a client. No network I/O happens until the first request.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		name:     cfg.Name,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		timeout:  cfg.Timeout,
		http2:    cfg.HTTP2,
		insecure: cfg.TLSInsecure,
		policy:   DefaultRetryPolicy(cfg.MaxRetries),
		logger:   cfg.Logger.With(zap.String("client", cfg.Name)),
		onRetry:  cfg.OnRetry,
		headers:  make(map[string]string),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRetryPolicy replaces the retry policy for subsequent calls.
func (c *Client) SetRetryPolicy(p RetryPolicy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy = p
}

// SetAuthToken attaches a bearer token to every subsequent request.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
	c.invalidate()
}

// RemoveAuthToken clears the bearer token.
func (c *Client) RemoveAuthToken() {
	c.mu.Lock()
	c.authToken = ""
	c.mu.Unlock()
	c.invalidate()
}

// SetHeader attaches a custom header to every subsequent request.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	c.headers[key] = value
	c.mu.Unlock()
	c.invalidate()
}

// RemoveHeader clears a custom header.
func (c *Client) RemoveHeader(key string) {
	c.mu.Lock()
	delete(c.headers, key)
	c.mu.Unlock()
	c.invalidate()
}

// BindContext replaces the internal request context with one borrowed from
// a browser session. While bound, header and token changes do not recreate
// the context and Close is a no-op: the session's cookies are the point,
// and the session owns the context's lifetime.
func (c *Client) BindContext(rc *RequestContext) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rc != nil && !c.bound {
		if err := c.rc.Close(); err != nil {
			c.logger.Warn("failed to dispose request context", zap.Error(err))
		}
	}
	c.rc = rc
	c.bound = true
	c.gen++
	c.initGroup.Forget(contextKey)
	c.logger.Debug("bound to external request context")
}

// Unbind releases the borrowed context without disposing it and forces a
// fresh owned context on next use.
func (c *Client) Unbind() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rc = nil
	c.bound = false
	c.gen++
	c.initGroup.Forget(contextKey)
	c.logger.Debug("unbound from external request context")
}

// Bound reports whether the client currently borrows its context from a
// browser session.
func (c *Client) Bound() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bound
}

// Close disposes the owned request context. Safe to call repeatedly; a
// no-op while bound to a browser session.
func (c *Client) Close() {
	c.invalidate()
}

// invalidate disposes the cached context and clears the in-flight
// initialization so the next caller restarts from scratch. Suppressed
// while bound.
func (c *Client) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bound {
		return
	}
	if c.rc != nil {
		if err := c.rc.Close(); err != nil {
			c.logger.Warn("failed to dispose request context", zap.Error(err))
		}
		c.rc = nil
	}
	c.gen++
	c.initGroup.Forget(contextKey)
}

// errContextStale signals that the client was invalidated or bound while
// an initialization was in flight; the caller restarts from scratch.
var errContextStale = errors.New("request context invalidated during initialization")

// requestContext returns the cached context, creating it on first use.
// Concurrent first callers share a single in-flight initialization; a
// creation failure propagates to all of them and caches nothing. An
// invalidation racing the initialization discards the half-built context
// and the caller restarts with the current header set.
func (c *Client) requestContext() (*RequestContext, error) {
	for {
		c.mu.Lock()
		rc := c.rc
		c.mu.Unlock()
		if rc != nil {
			return rc, nil
		}

		v, err, _ := c.initGroup.Do(contextKey, func() (any, error) {
			c.mu.Lock()
			gen := c.gen
			c.mu.Unlock()

			created, err := newOwnedContext(c.mergedHeaders(), c.timeout, c.http2, c.insecure)
			if err != nil {
				return nil, fmt.Errorf("failed to create request context: %w", err)
			}
			if !c.cacheContext(created, gen) {
				_ = created.Close()
				return nil, errContextStale
			}

			c.logger.Debug("request context created")
			return created, nil
		})
		if errors.Is(err, errContextStale) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return v.(*RequestContext), nil
	}
}

// cacheContext stores created as the owned context unless the client was
// invalidated or bound after gen was snapshotted. It reports whether the
// context was cached.
func (c *Client) cacheContext(created *RequestContext, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen || c.bound {
		return false
	}
	c.rc = created
	return true
}

// mergedHeaders bakes the header set for a new owned context.
func (c *Client) mergedHeaders() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := map[string]string{"Content-Type": "application/json"}
	for k, v := range c.headers {
		merged[k] = v
	}
	if c.authToken != "" {
		merged["Authorization"] = "Bearer " + c.authToken
	}
	return merged
}

// Get issues a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, &RequestOptions{Query: query})
}

// Post issues a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, &RequestOptions{Body: body})
}

// Put issues a PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, &RequestOptions{Body: body})
}

// Patch issues a PATCH request with an optional JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, &RequestOptions{Body: body})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Do executes one invocation with retries. A response with a status of 400
// or above is returned together with an *APIError; transport errors are
// returned after the retry budget is spent.
func (c *Client) Do(ctx context.Context, method, path string, opts *RequestOptions) (*Response, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	c.mu.Lock()
	policy := c.policy
	c.mu.Unlock()

	retries := policy.MaxRetries
	if opts != nil && opts.Retries != nil {
		retries = *opts.Retries
	}
	if retries < 0 {
		retries = 0
	}

	var query map[string]string
	var payload []byte
	if opts != nil {
		query = opts.Query
		if opts.Body != nil {
			var err error
			payload, err = json.Marshal(opts.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
		}
	}

	target := c.buildURL(path, query)
	correlationID := c.correlationID()
	start := time.Now()
	startMillis := strconv.FormatInt(start.UnixMilli(), 10)

	log := c.logger.With(
		zap.String("method", method),
		zap.String("url", target),
		zap.String("correlation_id", correlationID),
	)

	var hr *http.Response
	for attempt := 0; attempt <= retries; attempt++ {
		var err error
		hr, err = c.attempt(ctx, method, target, payload, correlationID, startMillis)
		if err != nil {
			if attempt < retries {
				delay := policy.backoff(attempt)
				log.Warn("transport error, retrying",
					zap.Int("attempt", attempt),
					zap.Duration("backoff", delay),
					zap.Error(err))
				if c.onRetry != nil {
					c.onRetry()
				}
				if werr := waitBackoff(ctx, delay); werr != nil {
					return nil, werr
				}
				continue
			}
			log.Error("transport error, retries exhausted", zap.Int("attempt", attempt), zap.Error(err))
			return nil, err
		}

		if policy.retryable(hr.StatusCode) && attempt < retries {
			delay := policy.backoff(attempt)
			log.Warn("retryable status, retrying",
				zap.Int("attempt", attempt),
				zap.Int("status", hr.StatusCode),
				zap.Duration("backoff", delay))
			if c.onRetry != nil {
				c.onRetry()
			}
			drain(hr)
			if werr := waitBackoff(ctx, delay); werr != nil {
				return nil, werr
			}
			continue
		}

		break
	}

	resp, err := newResponse(hr, correlationID, time.Since(start), c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug("request completed",
		zap.Int("status", resp.Status),
		zap.Duration("duration", resp.Duration))

	if resp.Status >= 400 {
		return resp, &APIError{
			Status:     resp.Status,
			StatusText: resp.StatusText,
			Method:     method,
			URL:        target,
			Data:       resp.Data,
		}
	}
	return resp, nil
}

// ValidateSchema checks a decoded body against a schema, returning an error
// that enumerates every violated constraint.
func (c *Client) ValidateSchema(data any, s *schema.Schema) error {
	return schema.Validate(data, s)
}

// attempt issues a single request. Each attempt gets its own timeout
// window from the transport's per-request timeout.
func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, correlationID, startMillis string) (*http.Response, error) {
	rc, err := c.requestContext()
	if err != nil {
		return nil, err
	}

	var body *bytes.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Correlation-ID", correlationID)
	req.Header.Set("X-Request-Start", startMillis)

	return rc.Do(req)
}

// buildURL appends encoded query parameters, respecting a pre-existing "?".
func (c *Client) buildURL(path string, query map[string]string) string {
	target := c.baseURL + path
	if len(query) == 0 {
		return target
	}

	values := url.Values{}
	for k, v := range query {
		values.Set(k, v)
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return target + sep + values.Encode()
}

// correlationID builds "<lowercased-name>-<epoch-millis>-<base36 suffix>".
func (c *Client) correlationID() string {
	c.rngMu.Lock()
	suffix := strconv.FormatInt(c.rng.Int63n(1<<31), 36)
	c.rngMu.Unlock()

	return fmt.Sprintf("%s-%d-%s", strings.ToLower(c.name), time.Now().UnixMilli(), suffix)
}

// waitBackoff blocks the calling goroutine only.
func waitBackoff(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func drain(hr *http.Response) {
	if hr != nil && hr.Body != nil {
		hr.Body.Close()
	}
}
