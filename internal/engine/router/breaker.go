// internal/engine/router/breaker.go
package router

import (
	"sync"
	"time"

	"maintquery/internal/common/metrics"
)

// BreakerState is the process-wide state of the generative backend breaker.
type BreakerState string

const (
	BreakerClosed BreakerState = "closed"
	BreakerOpen   BreakerState = "open"
)

// CircuitBreaker guards the generative backend. All transitions happen under
// one mutex so the state machine's invariants stay auditable in one place:
// transitions are monotonic within a cooldown window (nothing can re-open an
// already-open breaker before its cooldown expires) and only a failed
// post-cooldown probe restarts the window.
type CircuitBreaker struct {
	mu                  sync.Mutex
	state               BreakerState
	consecutiveFailures int
	openedAt            time.Time

	threshold int
	cooldown  time.Duration
	now       func() time.Time
}

func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:     BreakerClosed,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a generation attempt may proceed. While open, one
// probe attempt is allowed after the cooldown elapses; the breaker stays
// open until that probe succeeds.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerClosed {
		return true
	}
	return !b.now().Before(b.openedAt.Add(b.cooldown))
}

// RecordSuccess resets the failure count and closes the breaker.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
	if b.state == BreakerOpen {
		b.state = BreakerClosed
		metrics.BreakerState.Set(0)
	}
}

// RecordFailure counts a generation failure. The breaker opens at the
// configured threshold of consecutive failures. A failure while already open
// only restarts the cooldown when it came from a post-cooldown probe.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen {
		if !b.now().Before(b.openedAt.Add(b.cooldown)) {
			b.openedAt = b.now()
		}
		return
	}

	b.consecutiveFailures++
	if b.consecutiveFailures >= b.threshold {
		b.state = BreakerOpen
		b.openedAt = b.now()
		metrics.BreakerState.Set(1)
	}
}

// State returns the current breaker state.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// ConsecutiveFailures returns the current failure streak.
func (b *CircuitBreaker) ConsecutiveFailures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutiveFailures
}
