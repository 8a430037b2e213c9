package api

import (
	"sync"
	"time"

	"github.com/Guliveer/twitch-helix-go/internal/constants"
)

// circuitBreaker tracks consecutive exhausted calls and backs off when the
// API appears to be down.
type circuitBreaker struct {
	mu               sync.Mutex
	consecutiveFails int
	cooldownUntil    time.Time
	nowFunc          func() time.Time
}

func newCircuitBreaker(now func() time.Time) *circuitBreaker {
	if now == nil {
		now = time.Now
	}
	return &circuitBreaker{nowFunc: now}
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	cb.consecutiveFails = 0
	cb.cooldownUntil = time.Time{}
	cb.mu.Unlock()
}

// recordFailure increments the failure counter and, once the threshold is
// reached, opens the breaker for a cooldown that grows with every further
// failure up to BreakerMaxCooldown.
func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.consecutiveFails++
	if cb.consecutiveFails < constants.BreakerThreshold {
		return
	}
	backoff := time.Duration(cb.consecutiveFails-constants.BreakerThreshold+1) * constants.BreakerStep
	if backoff > constants.BreakerMaxCooldown {
		backoff = constants.BreakerMaxCooldown
	}
	cb.cooldownUntil = cb.nowFunc().Add(backoff)
}

// shouldSkip returns true if the circuit breaker is open.
func (cb *circuitBreaker) shouldSkip() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.nowFunc().Before(cb.cooldownUntil)
}

func (cb *circuitBreaker) failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.consecutiveFails
}
