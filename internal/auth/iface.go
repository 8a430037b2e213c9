package auth

import (
	"context"
	"time"
)

// Provider is the authentication interface used by the request engine.
// *TokenManager satisfies this interface.
type Provider interface {
	Authorize(ctx context.Context) (time.Time, error)
	AccessToken(ctx context.Context) (string, error)
	ClientID() string
}
