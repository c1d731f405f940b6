// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_engine_answers_total",
			Help: "Total answers produced, by source",
		},
		[]string{"source"},
	)

	AnswerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "query_engine_answer_duration_seconds",
			Help: "End-to-end answer latency in seconds",
		},
		[]string{"source"},
	)

	RouteDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_engine_route_decisions_total",
			Help: "Routing decisions by path, complexity and outcome",
		},
		[]string{"path", "complexity", "outcome"},
	)

	GenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_engine_generation_failures_total",
			Help: "Generative backend failures by reason",
		},
		[]string{"reason"},
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "query_engine_breaker_open",
			Help: "1 when the generative circuit breaker is open",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_engine_cache_lookups_total",
			Help: "Cache lookups by strategy and result",
		},
		[]string{"strategy", "result"},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_engine_cache_evictions_total",
			Help: "Entries evicted from the answer cache",
		},
	)

	ValidationRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_engine_validation_rejections_total",
			Help: "Threat validator rejections by category",
		},
		[]string{"category"},
	)
)
