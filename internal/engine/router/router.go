// internal/engine/router/router.go
package router

import (
	"context"
	"time"

	"maintquery/internal/common/config"
	"maintquery/internal/common/logger"
	"maintquery/internal/common/metrics"
	"maintquery/internal/models"
)

// Route is the per-request decision: which generation paths to attempt, in
// order. Fallback is implicit after the last attempt.
type Route struct {
	Decision models.RouteDecision
	Attempts []models.RoutePath
}

// Router picks the generation path for each request based on request
// complexity and generative backend availability. It owns the circuit
// breaker and the memoized health probe so that every availability signal
// flows through one component.
type Router struct {
	breaker      *CircuitBreaker
	availability *availabilityCache
	logger       logger.Logger
}

func NewRouter(cfg config.RouterConfig, probe healthProbe, log logger.Logger) *Router {
	return &Router{
		breaker: NewCircuitBreaker(
			cfg.BreakerFailureThreshold,
			time.Duration(cfg.BreakerCooldown)*time.Millisecond,
		),
		availability: newAvailabilityCache(
			time.Duration(cfg.AvailabilityInterval)*time.Millisecond,
			time.Duration(cfg.HealthProbeTimeout)*time.Millisecond,
			probe,
		),
		logger: log.With(map[string]interface{}{"component": "availability-router"}),
	}
}

// Decide produces the routing verdict for one request. The generative path
// is only eligible when the breaker admits traffic and the backend's cached
// health verdict is positive; otherwise everything degrades to the rule
// library with fallback behind it.
func (r *Router) Decide(ctx context.Context, intent models.Intent, entities []models.Entity) Route {
	complexity := classifyComplexity(intent, entities)

	generativeOK := r.breaker.Allow() && r.availability.Available(ctx)

	var route Route
	route.Decision.Complexity = complexity

	switch {
	case !generativeOK:
		route.Decision.ChosenPath = models.PathRuleBased
		route.Decision.Reason = "generative backend unavailable"
		route.Attempts = []models.RoutePath{models.PathRuleBased}
	case complexity == models.ComplexitySimple:
		route.Decision.ChosenPath = models.PathRuleBased
		route.Decision.Reason = "simple request handled by rule library"
		route.Attempts = []models.RoutePath{models.PathRuleBased, models.PathGenerative}
	default:
		route.Decision.ChosenPath = models.PathGenerative
		route.Decision.Reason = "complexity requires generative planning"
		route.Attempts = []models.RoutePath{models.PathGenerative, models.PathRuleBased}
	}

	r.logger.Debug("route decided", map[string]interface{}{
		"path":       route.Decision.ChosenPath,
		"complexity": complexity,
		"reason":     route.Decision.Reason,
	})

	return route
}

// ReportGenerative feeds a generative attempt's outcome into the breaker.
func (r *Router) ReportGenerative(success bool) {
	if success {
		r.breaker.RecordSuccess()
		return
	}
	r.breaker.RecordFailure()
}

// RecordOutcome publishes one routing outcome to metrics.
func (r *Router) RecordOutcome(route Route, path models.RoutePath, outcome string) {
	metrics.RouteDecisions.WithLabelValues(
		string(path),
		string(route.Decision.Complexity),
		outcome,
	).Inc()
}

// ForceHealthCheck re-probes the generative backend immediately, bypassing
// the memoized verdict. Exposed for operational tooling.
func (r *Router) ForceHealthCheck(ctx context.Context) bool {
	return r.availability.ForceCheck(ctx)
}

// BreakerState exposes the breaker state for health reporting.
func (r *Router) BreakerState() BreakerState {
	return r.breaker.State()
}
