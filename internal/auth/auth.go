// Package auth obtains and renews Twitch app access tokens using the OAuth
// client-credentials grant.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/Guliveer/twitch-helix-go/internal/apierr"
	"github.com/Guliveer/twitch-helix-go/internal/constants"
	"github.com/Guliveer/twitch-helix-go/internal/events"
	"github.com/Guliveer/twitch-helix-go/internal/metrics"
)

// Token is an app access token and the instant it stops being accepted.
type Token struct {
	Value     string
	ExpiresAt time.Time

	renewAt time.Time
}

// TokenManager holds the current app access token and renews it before it
// expires. Concurrent callers that find no valid token share a single
// exchange. It is safe for concurrent use.
type TokenManager struct {
	mu    sync.RWMutex
	token *Token

	flight singleflight.Group

	creds        Credentials
	cfg          clientcredentials.Config
	httpClient   *http.Client
	events       *events.Emitter
	metrics      *metrics.Collectors
	safetyMargin time.Duration
	timeout      time.Duration
	nowFunc      func() time.Time
}

// TokenOption configures a TokenManager.
type TokenOption func(*TokenManager)

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(url string) TokenOption {
	return func(m *TokenManager) {
		if url != "" {
			m.cfg.TokenURL = url
		}
	}
}

// WithHTTPClient sets the HTTP client used for token exchanges.
func WithHTTPClient(hc *http.Client) TokenOption {
	return func(m *TokenManager) {
		if hc != nil {
			m.httpClient = hc
		}
	}
}

// WithSafetyMargin sets how long before expiry a token is renewed.
func WithSafetyMargin(d time.Duration) TokenOption {
	return func(m *TokenManager) {
		if d >= 0 {
			m.safetyMargin = d
		}
	}
}

// WithExchangeTimeout bounds a single token exchange.
func WithExchangeTimeout(d time.Duration) TokenOption {
	return func(m *TokenManager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithEvents sets the emitter that receives renewal events.
func WithEvents(em *events.Emitter) TokenOption {
	return func(m *TokenManager) {
		if em != nil {
			m.events = em
		}
	}
}

// WithMetrics records renewal outcomes.
func WithMetrics(c *metrics.Collectors) TokenOption {
	return func(m *TokenManager) {
		m.metrics = c
	}
}

// WithNowFunc overrides the clock for testing.
func WithNowFunc(f func() time.Time) TokenOption {
	return func(m *TokenManager) {
		if f != nil {
			m.nowFunc = f
		}
	}
}

// NewTokenManager validates creds and returns a manager that has not yet
// contacted the token endpoint.
func NewTokenManager(creds Credentials, opts ...TokenOption) (*TokenManager, error) {
	if err := ValidateCredentials(creds); err != nil {
		return nil, err
	}

	m := &TokenManager{
		creds: creds,
		cfg: clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     constants.TokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient:   &http.Client{Timeout: constants.DefaultTokenTimeout},
		events:       events.New(),
		safetyMargin: constants.DefaultSafetyMargin,
		timeout:      constants.DefaultTokenTimeout,
		nowFunc:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// ClientID returns the application client id sent with every Helix request.
func (m *TokenManager) ClientID() string {
	return m.creds.ClientID
}

// Authorize makes sure a valid token is held and returns its expiry. It
// performs an exchange only when no token is held or the current one is
// within the safety margin of expiring.
func (m *TokenManager) Authorize(ctx context.Context) (time.Time, error) {
	tok, err := m.ensure(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return tok.ExpiresAt, nil
}

// AccessToken returns a bearer token valid for at least the safety margin,
// renewing it first if necessary.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	tok, err := m.ensure(ctx)
	if err != nil {
		return "", err
	}
	return tok.Value, nil
}

// Current returns a copy of the held token, if any.
func (m *TokenManager) Current() (Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == nil {
		return Token{}, false
	}
	return *m.token, true
}

// Invalidate drops the held token so the next call performs an exchange.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	m.token = nil
	m.mu.Unlock()
}

func (m *TokenManager) valid() (*Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == nil || !m.nowFunc().Before(m.token.renewAt) {
		return nil, false
	}
	return m.token, true
}

func (m *TokenManager) ensure(ctx context.Context) (*Token, error) {
	if tok, ok := m.valid(); ok {
		return tok, nil
	}

	// The exchange outlives the caller that started it so that other
	// waiters are not failed by one caller's cancellation.
	exchangeCtx := context.WithoutCancel(ctx)
	ch := m.flight.DoChan("token", func() (any, error) {
		if tok, ok := m.valid(); ok {
			return tok, nil
		}
		return m.exchange(exchangeCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Token), nil
	case <-ctx.Done():
		m.events.Error("Gave up waiting for app access token", "error", ctx.Err())
		return nil, &apierr.AuthError{Err: ctx.Err()}
	}
}

func (m *TokenManager) exchange(ctx context.Context) (*Token, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)

	started := m.nowFunc()
	ot, err := m.cfg.Token(ctx)
	if err != nil {
		authErr := classifyTokenError(err)
		m.metrics.TokenRenewal(false)
		m.events.Error("Failed to obtain app access token",
			"status", authErr.StatusCode, "error", authErr.Err)
		return nil, authErr
	}
	if ot.AccessToken == "" {
		authErr := &apierr.AuthError{Err: errors.New("token endpoint returned no access_token")}
		m.metrics.TokenRenewal(false)
		m.events.Error("Failed to obtain app access token", "error", authErr.Err)
		return nil, authErr
	}

	ttl := tokenTTL(ot)
	margin := m.safetyMargin
	if margin > ttl/2 {
		margin = ttl / 2
	}
	tok := &Token{
		Value:     ot.AccessToken,
		ExpiresAt: started.Add(ttl),
		renewAt:   started.Add(ttl - margin),
	}

	m.mu.Lock()
	m.token = tok
	m.mu.Unlock()

	m.metrics.TokenRenewal(true)
	m.events.Info("Renewed app access token",
		"expires_at", tok.ExpiresAt.UTC().Format(time.RFC3339),
		"ttl", ttl.Round(time.Second).String())
	return tok, nil
}

// tokenTTL prefers the raw expires_in value so that the expiry is measured
// against the manager's clock.
func tokenTTL(ot *oauth2.Token) time.Duration {
	switch v := ot.Extra("expires_in").(type) {
	case float64:
		if v > 0 {
			return time.Duration(v) * time.Second
		}
	case json.Number:
		if n, err := v.Int64(); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	if !ot.Expiry.IsZero() {
		if d := time.Until(ot.Expiry); d > 0 {
			return d
		}
	}
	return constants.DefaultTokenTTL
}

func classifyTokenError(err error) *apierr.AuthError {
	var rErr *oauth2.RetrieveError
	if !errors.As(err, &rErr) || rErr.Response == nil {
		return &apierr.AuthError{Err: err}
	}

	authErr := &apierr.AuthError{StatusCode: rErr.Response.StatusCode, Err: err}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(rErr.Body, &body) == nil && body.Message != "" {
		authErr.Err = fmt.Errorf("token endpoint: %s", body.Message)
	} else if rErr.ErrorCode != "" {
		authErr.Err = fmt.Errorf("token endpoint: %s", rErr.ErrorCode)
	}
	return authErr
}
