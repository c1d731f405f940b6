// internal/engine/router/availability.go
package router

import (
	"context"
	"sync"
	"time"
)

// healthProbe checks the generative backend within the given context.
type healthProbe func(ctx context.Context) bool

// availabilityCache memoizes the backend health probe so routing does not
// pay a network round-trip per request. Reads are mutex-guarded but the
// staleness window itself is a deliberate race: a slightly stale verdict is
// fine, a probe per request is not.
type availabilityCache struct {
	mu        sync.Mutex
	available bool
	checkedAt time.Time

	interval time.Duration
	timeout  time.Duration
	probe    healthProbe
	now      func() time.Time
}

func newAvailabilityCache(interval, timeout time.Duration, probe healthProbe) *availabilityCache {
	return &availabilityCache{
		interval: interval,
		timeout:  timeout,
		probe:    probe,
		now:      time.Now,
	}
}

// Available returns the cached verdict, re-probing when stale.
func (a *availabilityCache) Available(ctx context.Context) bool {
	a.mu.Lock()
	fresh := !a.checkedAt.IsZero() && a.now().Sub(a.checkedAt) < a.interval
	verdict := a.available
	a.mu.Unlock()

	if fresh {
		return verdict
	}
	return a.ForceCheck(ctx)
}

// ForceCheck bypasses the staleness window and probes immediately.
func (a *availabilityCache) ForceCheck(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	verdict := a.probe(probeCtx)

	a.mu.Lock()
	a.available = verdict
	a.checkedAt = a.now()
	a.mu.Unlock()

	return verdict
}
