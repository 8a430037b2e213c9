// Package apierr defines the error taxonomy shared by the token manager,
// the request engine and the batch helpers.
package apierr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCircuitOpen is returned when the circuit breaker is open and requests
// are being skipped to avoid hammering a failing API.
var ErrCircuitOpen = errors.New("circuit breaker open: API requests temporarily suspended")

// ConfigurationError reports invalid construction options. It is never
// retried.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "helix: " + e.Reason
}

// AuthError reports a failed OAuth client-credentials exchange. StatusCode
// is zero when the token endpoint could not be reached.
type AuthError struct {
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("helix: authorization failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("helix: authorization failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// APIError is a non-404 4xx answer from Helix.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no message"
	}
	return fmt.Sprintf("helix: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// IsUnauthorized reports whether Helix rejected the credentials or token.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// TransientError is a 5xx, 429 or transport failure that persisted after
// all retries. StatusCode is zero for transport failures.
type TransientError struct {
	Method     string
	Path       string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *TransientError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "helix: %s %s failed", e.Method, e.Path)
	if e.Attempts > 0 {
		fmt.Fprintf(&b, " after %d attempts", e.Attempts)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// BatchError reports that one upstream group of a batch lookup failed and
// the whole batch was abandoned.
type BatchError struct {
	Group int
	Keys  []string
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("helix: batch group %d (%d keys) failed: %v", e.Group, len(e.Keys), e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
