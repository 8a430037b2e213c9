package helix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Guliveer/twitch-helix-go/internal/api"
	"github.com/Guliveer/twitch-helix-go/internal/apierr"
	"github.com/Guliveer/twitch-helix-go/internal/auth"
	"github.com/Guliveer/twitch-helix-go/internal/batch"
	"github.com/Guliveer/twitch-helix-go/internal/cache"
	"github.com/Guliveer/twitch-helix-go/internal/constants"
	"github.com/Guliveer/twitch-helix-go/internal/events"
	"github.com/Guliveer/twitch-helix-go/internal/metrics"
	"github.com/Guliveer/twitch-helix-go/internal/model"
)

// Options configures a Client. ClientID and ClientSecret are required; every
// other zero value selects a default.
type Options struct {
	ClientID     string
	ClientSecret string

	// BaseURL is the Helix root, https://api.twitch.tv/helix by default.
	BaseURL string
	// TokenURL is the OAuth token endpoint, https://id.twitch.tv/oauth2/token
	// by default.
	TokenURL string

	// HTTPClient is used for Helix calls and token exchanges. When nil a
	// pooled client with a Timeout per attempt is created.
	HTTPClient *http.Client
	Timeout    time.Duration

	// MaxRetries bounds retries of transient failures. Zero selects the
	// default; set DisableRetries to make a single attempt.
	MaxRetries     int
	DisableRetries bool
	RetryBackoff   time.Duration
	MaxBackoff     time.Duration

	// SafetyMargin is how long before expiry the token is renewed.
	SafetyMargin time.Duration
	TokenTimeout time.Duration

	RequestsPerMinute int
	DisableRateLimit  bool

	MaxScanPages int
	BatchWorkers int

	// UserCacheTTL keeps resolved users in memory. A negative value
	// disables the cache.
	UserCacheTTL time.Duration

	// Registerer receives the client's Prometheus metrics. Nil disables
	// metrics.
	Registerer prometheus.Registerer
}

func (o *Options) validate() error {
	durations := []struct {
		name string
		v    time.Duration
	}{
		{"timeout", o.Timeout},
		{"retryBackoff", o.RetryBackoff},
		{"maxBackoff", o.MaxBackoff},
		{"safetyMargin", o.SafetyMargin},
		{"tokenTimeout", o.TokenTimeout},
	}
	for _, d := range durations {
		if d.v < 0 {
			return negativeOption(d.name)
		}
	}

	counts := []struct {
		name string
		v    int
	}{
		{"maxRetries", o.MaxRetries},
		{"requestsPerMinute", o.RequestsPerMinute},
		{"maxScanPages", o.MaxScanPages},
		{"batchWorkers", o.BatchWorkers},
	}
	for _, c := range counts {
		if c.v < 0 {
			return negativeOption(c.name)
		}
	}
	return nil
}

func negativeOption(name string) error {
	return &apierr.ConfigurationError{Option: name, Reason: fmt.Sprintf("option %s must not be negative", name)}
}

// Client issues authenticated Helix lookups. It is safe for concurrent use.
type Client struct {
	tokens  *auth.TokenManager
	engine  *api.Client
	events  *events.Emitter
	metrics *metrics.Collectors

	usersByLogin *batch.Resolver[model.User]
	usersByID    *batch.Resolver[model.User]
	clips        *batch.Resolver[model.Clip]
	follows      *batch.Scanner[model.Follow]
}

// New validates opts and returns a Client. No network call is made until
// the first lookup or Authorize.
func New(opts *Options) (*Client, error) {
	if opts == nil {
		return nil, &apierr.ConfigurationError{Option: "options", Reason: "needs options object"}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	em := events.New()
	mc := metrics.New(opts.Registerer)

	httpClient := opts.HTTPClient
	if httpClient == nil && opts.Timeout > 0 {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	tokenOpts := []auth.TokenOption{
		auth.WithTokenURL(opts.TokenURL),
		auth.WithHTTPClient(httpClient),
		auth.WithEvents(em),
		auth.WithMetrics(mc),
	}
	if opts.SafetyMargin > 0 {
		tokenOpts = append(tokenOpts, auth.WithSafetyMargin(opts.SafetyMargin))
	}
	if opts.TokenTimeout > 0 {
		tokenOpts = append(tokenOpts, auth.WithExchangeTimeout(opts.TokenTimeout))
	}
	tokens, err := auth.NewTokenManager(auth.Credentials{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
	}, tokenOpts...)
	if err != nil {
		return nil, err
	}

	rpm := opts.RequestsPerMinute
	if opts.DisableRateLimit {
		rpm = -1
	}
	retries := opts.MaxRetries
	if opts.DisableRetries {
		retries = -1
	}
	engine := api.NewClient(tokens, api.Config{
		BaseURL:           opts.BaseURL,
		HTTPClient:        httpClient,
		MaxRetries:        retries,
		RetryBackoff:      opts.RetryBackoff,
		MaxBackoff:        opts.MaxBackoff,
		RequestsPerMinute: rpm,
		Events:            em,
		Metrics:           mc,
	})

	cacheTTL := opts.UserCacheTTL
	if cacheTTL == 0 {
		cacheTTL = constants.DefaultUserCacheTTL
	}

	c := &Client{
		tokens:  tokens,
		engine:  engine,
		events:  em,
		metrics: mc,
	}
	c.usersByLogin = &batch.Resolver[model.User]{
		Name:      "users by login",
		Fetch:     c.fetchUsers("login"),
		KeyOf:     func(u *model.User) string { return u.LoginKey() },
		Normalize: model.NormalizeLogin,
		Workers:   opts.BatchWorkers,
		Cache:     cache.New[model.User](cacheTTL),
		Events:    em,
		Metrics:   mc,
	}
	c.usersByID = &batch.Resolver[model.User]{
		Name:      "users by id",
		Fetch:     c.fetchUsers("id"),
		KeyOf:     func(u *model.User) string { return u.IDKey() },
		Normalize: strings.TrimSpace,
		Workers:   opts.BatchWorkers,
		Cache:     cache.New[model.User](cacheTTL),
		Events:    em,
		Metrics:   mc,
	}
	c.clips = &batch.Resolver[model.Clip]{
		Name:      "clips by id",
		Fetch:     c.fetchClips,
		KeyOf:     func(cl *model.Clip) string { return cl.IDKey() },
		Normalize: strings.TrimSpace,
		Workers:   opts.BatchWorkers,
		Events:    em,
		Metrics:   mc,
	}
	c.follows = &batch.Scanner[model.Follow]{
		MaxPages: opts.MaxScanPages,
		Events:   em,
		Metrics:  mc,
	}
	return c, nil
}

// Authorize makes sure the client holds a valid app access token and
// returns the time it expires. It contacts the token endpoint only when no
// token is held or the current one is about to expire.
func (c *Client) Authorize(ctx context.Context) (time.Time, error) {
	return c.tokens.Authorize(ctx)
}

// On registers handler for events of kind and returns a function that
// removes it.
func (c *Client) On(kind EventKind, handler Handler) (unsubscribe func()) {
	return c.events.Subscribe(kind, handler)
}

// ClientID returns the application client id.
func (c *Client) ClientID() string {
	return c.tokens.ClientID()
}

// getList performs a GET and decodes the Helix envelope. A nil response
// means Helix had nothing for the query.
func getList[T any](ctx context.Context, c *Client, path string, params url.Values) (*model.Response[T], error) {
	body, err := c.engine.Request(ctx, http.MethodGet, path, params)
	if err != nil || body == nil {
		return nil, err
	}
	var resp model.Response[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		c.events.Error("Failed to decode Helix response", "path", path, "error", err)
		return nil, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return &resp, nil
}
