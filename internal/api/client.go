// Package api implements the authenticated Helix request engine: bearer
// token injection, response classification, retries with backoff, a
// client-side rate guard and a circuit breaker.
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
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Guliveer/twitch-helix-go/internal/apierr"
	"github.com/Guliveer/twitch-helix-go/internal/auth"
	"github.com/Guliveer/twitch-helix-go/internal/constants"
	"github.com/Guliveer/twitch-helix-go/internal/events"
	"github.com/Guliveer/twitch-helix-go/internal/metrics"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

var errRateLimited = errors.New("rate limited")

// Config holds the engine settings. Zero values select the defaults from
// the constants package.
type Config struct {
	BaseURL      string
	HTTPClient   *http.Client
	MaxRetries   int
	RetryBackoff time.Duration
	MaxBackoff   time.Duration

	// RequestsPerMinute sizes the client-side rate guard. Zero selects the
	// default and a negative value disables the guard.
	RequestsPerMinute int

	Events  *events.Emitter
	Metrics *metrics.Collectors

	nowFunc func() time.Time
}

// Client performs authenticated Helix calls. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	auth       auth.Provider
	events     *events.Emitter
	metrics    *metrics.Collectors
	breaker    *circuitBreaker
	limiter    *rate.Limiter

	maxRetries   int
	retryBackoff time.Duration
	maxBackoff   time.Duration
	nowFunc      func() time.Time
}

// NewClient creates a request engine that takes bearer tokens from provider.
func NewClient(provider auth.Provider, cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: constants.DefaultHTTPTimeout,
		}
	}

	c := &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		auth:         provider,
		events:       cfg.Events,
		metrics:      cfg.Metrics,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		maxBackoff:   cfg.MaxBackoff,
		nowFunc:      cfg.nowFunc,
	}
	if c.baseURL == "" {
		c.baseURL = constants.HelixURL
	}
	if c.events == nil {
		c.events = events.New()
	}
	if c.maxRetries == 0 {
		c.maxRetries = constants.DefaultMaxRetries
	} else if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.retryBackoff <= 0 {
		c.retryBackoff = constants.DefaultRetryBackoff
	}
	if c.maxBackoff <= 0 {
		c.maxBackoff = constants.DefaultMaxBackoff
	}
	if c.nowFunc == nil {
		c.nowFunc = time.Now
	}
	c.breaker = newCircuitBreaker(c.nowFunc)

	switch rpm := cfg.RequestsPerMinute; {
	case rpm == 0:
		c.limiter = newLimiter(constants.DefaultRequestsPerMinute)
	case rpm > 0:
		c.limiter = newLimiter(rpm)
	}
	return c
}

func newLimiter(perMinute int) *rate.Limiter {
	burst := perMinute / 60
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst)
}

// BaseURL returns the Helix root the engine sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// helixError is the body Helix sends with 4xx and 5xx answers.
type helixError struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// attemptResult describes one HTTP round trip.
type attemptResult struct {
	status     int
	body       []byte
	retryAfter time.Duration
	err        error
}

// Request performs an authenticated call to path (relative to the Helix
// root) and returns the raw JSON body. A 404, or an envelope whose data
// array is empty, yields a nil body and a nil error. Transient failures are
// retried with exponential backoff; non-404 4xx answers are returned as
// *apierr.APIError without retrying.
func (c *Client) Request(ctx context.Context, method, path string, params url.Values) (json.RawMessage, error) {
	started := time.Now()

	if c.breaker.shouldSkip() {
		c.events.Error("Circuit breaker open, skipping Helix request", "method", method, "path", path)
		c.metrics.ObserveRequest(path, metrics.OutcomeTransient, time.Since(started))
		return nil, &apierr.TransientError{Method: method, Path: path, Err: apierr.ErrCircuitOpen}
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	attempts := c.maxRetries + 1
	var last attemptResult

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := c.backoff(attempt-1, last.retryAfter)
			c.events.Warn("Retrying Helix request",
				"method", method,
				"path", path,
				"attempt", fmt.Sprintf("%d/%d", attempt, attempts),
				"status", last.status,
				"error", last.err,
				"backoff", wait.String())
			c.metrics.IncRetry(path)

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, c.abandon(method, path, attempt-1, started, ctx.Err())
			case <-timer.C:
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, c.abandon(method, path, attempt-1, started, fmt.Errorf("waiting for rate limiter: %w", err))
			}
		}

		token, err := c.auth.AccessToken(ctx)
		if err != nil {
			c.metrics.ObserveRequest(path, metrics.OutcomeAuthError, time.Since(started))
			return nil, err
		}

		last = c.do(ctx, method, endpoint, token)
		if last.err != nil && ctx.Err() != nil {
			return nil, c.abandon(method, path, attempt, started, ctx.Err())
		}

		switch {
		case last.err != nil, last.status == http.StatusTooManyRequests, last.status >= 500:
			continue

		case last.status == http.StatusNotFound:
			c.succeed(method, path, last.status, attempt, started, metrics.OutcomeNotFound)
			return nil, nil

		case last.status >= 400:
			return nil, c.reject(method, path, last, started)

		default:
			body, err := payload(last.body)
			if err != nil {
				c.breaker.recordSuccess()
				c.events.Error("Failed to decode Helix response",
					"method", method, "path", path, "status", last.status, "error", err)
				c.metrics.ObserveRequest(path, metrics.OutcomeAPIError, time.Since(started))
				return nil, fmt.Errorf("helix: %s %s: decoding response: %w", method, path, err)
			}
			outcome := metrics.OutcomeOK
			if body == nil {
				outcome = metrics.OutcomeNotFound
			}
			c.succeed(method, path, last.status, attempt, started, outcome)
			return body, nil
		}
	}

	c.breaker.recordFailure()
	transientErr := &apierr.TransientError{
		Method:     method,
		Path:       path,
		StatusCode: last.status,
		Attempts:   attempts,
		Err:        last.err,
	}
	c.events.Error("Helix request failed after all retries",
		"method", method,
		"path", path,
		"status", last.status,
		"attempts", attempts,
		"error", last.err)
	c.metrics.ObserveRequest(path, metrics.OutcomeTransient, time.Since(started))
	return nil, transientErr
}

// abandon reports a request given up because its context ended. The breaker
// is left alone since Helix itself did not fail.
func (c *Client) abandon(method, path string, attempts int, started time.Time, err error) error {
	c.events.Error("Helix request abandoned",
		"method", method,
		"path", path,
		"attempts", attempts,
		"error", err)
	c.metrics.ObserveRequest(path, metrics.OutcomeTransient, time.Since(started))
	return &apierr.TransientError{Method: method, Path: path, Attempts: attempts, Err: err}
}

func (c *Client) succeed(method, path string, status, attempt int, started time.Time, outcome string) {
	took := time.Since(started)
	c.breaker.recordSuccess()
	c.events.Info("Helix request completed",
		"method", method,
		"path", path,
		"status", status,
		"attempts", attempt,
		"duration", took.Round(time.Millisecond).String())
	c.metrics.ObserveRequest(path, outcome, took)
}

func (c *Client) reject(method, path string, res attemptResult, started time.Time) error {
	c.breaker.recordSuccess()

	var he helixError
	_ = json.Unmarshal(res.body, &he)
	msg := he.Message
	if msg == "" {
		msg = he.Error
	}
	apiErr := &apierr.APIError{
		Method:     method,
		Path:       path,
		StatusCode: res.status,
		Message:    msg,
	}

	// A rejected bearer token is dropped so the next call exchanges a new one.
	if res.status == http.StatusUnauthorized {
		if inv, ok := c.auth.(interface{ Invalidate() }); ok {
			inv.Invalidate()
		}
	}

	c.events.Error("Helix request rejected",
		"method", method,
		"path", path,
		"status", res.status,
		"message", msg)
	c.metrics.ObserveRequest(path, metrics.OutcomeAPIError, time.Since(started))
	return apiErr
}

func (c *Client) do(ctx context.Context, method, endpoint, token string) attemptResult {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return attemptResult{err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Client-Id", c.auth.ClientID())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return attemptResult{err: redact(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return attemptResult{status: resp.StatusCode, err: fmt.Errorf("reading response: %w", err)}
	}

	res := attemptResult{status: resp.StatusCode, body: body}
	if resp.StatusCode == http.StatusTooManyRequests {
		res.retryAfter = c.resetDelay(resp.Header.Get("Ratelimit-Reset"))
		res.err = errRateLimited
	} else if resp.StatusCode >= 500 {
		res.err = fmt.Errorf("server error: %s", http.StatusText(resp.StatusCode))
	}
	return res
}

// backoff returns base*2^(retry-1), capped at the maximum. A server-provided
// delay takes precedence but is capped the same way.
func (c *Client) backoff(retry int, serverDelay time.Duration) time.Duration {
	if serverDelay > 0 {
		return min(serverDelay, c.maxBackoff)
	}
	d := c.retryBackoff
	for i := 1; i < retry; i++ {
		d *= 2
		if d >= c.maxBackoff {
			return c.maxBackoff
		}
	}
	return min(d, c.maxBackoff)
}

// resetDelay converts a Ratelimit-Reset header (unix seconds) into a wait.
func (c *Client) resetDelay(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return 0
	}
	d := time.Unix(secs, 0).Sub(c.nowFunc())
	if d < 0 {
		return 0
	}
	return d
}

// payload returns body unchanged unless it is empty or a Helix envelope
// with an empty data array, in which case it returns nil.
func payload(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	data := bytes.TrimSpace(env.Data)
	if bytes.Equal(data, []byte("[]")) || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	return json.RawMessage(trimmed), nil
}

// redact strips the query string from URL errors so that lookup values
// never reach events.
func redact(err error) error {
	var uErr *url.Error
	if errors.As(err, &uErr) {
		u, perr := url.Parse(uErr.URL)
		if perr == nil {
			u.RawQuery = ""
			return &url.Error{Op: uErr.Op, URL: u.String(), Err: uErr.Err}
		}
	}
	return err
}
