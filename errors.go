package helix

import (
	"errors"
	"net/http"

	"github.com/Guliveer/twitch-helix-go/internal/apierr"
)

// Error types returned by the client. Use errors.As to inspect them.
type (
	ConfigurationError = apierr.ConfigurationError
	AuthError          = apierr.AuthError
	APIError           = apierr.APIError
	TransientError     = apierr.TransientError
	BatchError         = apierr.BatchError
)

// ErrCircuitOpen is wrapped by the *TransientError returned while the client
// is backing off from a failing API.
var ErrCircuitOpen = apierr.ErrCircuitOpen

// IsTransient reports whether err is a failure that may succeed if the call
// is repeated later.
func IsTransient(err error) bool {
	var tErr *TransientError
	return errors.As(err, &tErr)
}

// IsUnauthorized reports whether err means the credentials or the token were
// rejected.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsUnauthorized()
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.StatusCode == http.StatusBadRequest ||
			authErr.StatusCode == http.StatusUnauthorized ||
			authErr.StatusCode == http.StatusForbidden
	}
	return false
}
