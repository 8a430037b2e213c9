// Package constants defines the Twitch Helix and OAuth endpoints, upstream
// batch limits, and the default timeout, retry and renewal values used
// throughout the client.
package constants

import "time"

const (
	// HelixURL is the base URL of the Twitch Helix API.
	HelixURL = "https://api.twitch.tv/helix"
	// TokenURL is the Twitch OAuth2 token endpoint.
	TokenURL = "https://id.twitch.tv/oauth2/token"
)

// Helix resource paths, relative to HelixURL.
const (
	PathUsers   = "/users"
	PathStreams = "/streams"
	PathClips   = "/clips"
	PathFollows = "/users/follows"
)

const (
	// MaxIDsPerRequest is the maximum number of id/login query values Helix
	// accepts on a single lookup call.
	MaxIDsPerRequest = 100
	// FollowsPageSize is the page size requested when walking follow lists.
	FollowsPageSize = 100
	// DefaultMaxScanPages bounds a single paginated scan.
	DefaultMaxScanPages = 50
	// DefaultBatchWorkers is the number of upstream groups resolved concurrently.
	DefaultBatchWorkers = 4
)

const (
	// DefaultHTTPTimeout is the per-attempt timeout for Helix requests.
	DefaultHTTPTimeout = 15 * time.Second
	// DefaultTokenTimeout bounds a single OAuth token exchange.
	DefaultTokenTimeout = 10 * time.Second
	// DefaultMaxRetries is the number of retries for transient failures.
	DefaultMaxRetries = 3
	// DefaultRetryBackoff is the backoff before the first retry; it doubles
	// on every further attempt.
	DefaultRetryBackoff = 1 * time.Second
	// DefaultMaxBackoff caps the backoff between two attempts.
	DefaultMaxBackoff = 8 * time.Second
	// DefaultSafetyMargin is how long before expiry a token is renewed. It
	// must exceed DefaultHTTPTimeout*(DefaultMaxRetries+1) plus the summed
	// backoff so a token never expires during a request.
	DefaultSafetyMargin = 5 * time.Minute
	// DefaultTokenTTL is assumed when the token endpoint omits expires_in.
	DefaultTokenTTL = time.Hour
	// DefaultUserCacheTTL is how long resolved user records stay cached.
	DefaultUserCacheTTL = 10 * time.Minute
	// DefaultRequestsPerMinute is the Helix app-token rate limit.
	DefaultRequestsPerMinute = 800
)

const (
	// BreakerThreshold is the number of consecutive exhausted calls after
	// which the circuit breaker opens.
	BreakerThreshold = 10
	// BreakerStep is the cooldown added per failure beyond the threshold.
	BreakerStep = 30 * time.Second
	// BreakerMaxCooldown caps the breaker cooldown.
	BreakerMaxCooldown = 5 * time.Minute
)

// UserAgent is sent with every Helix request.
const UserAgent = "twitch-helix-go/1.0"
