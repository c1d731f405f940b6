// internal/engine/engine.go

// Package engine wires the full question-answering pipeline: threat
// assessment, cache lookup, entity extraction, intent classification,
// routing, SQL generation, output validation, execution and narration.
// Answer is total: every question gets a response, degrading through the
// fallback service when everything else fails.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"maintquery/internal/common/config"
	stderrors "maintquery/internal/common/errors"
	"maintquery/internal/common/logger"
	"maintquery/internal/common/metrics"
	"maintquery/internal/common/observability"
	"maintquery/internal/engine/cache"
	"maintquery/internal/engine/executor"
	"maintquery/internal/engine/extract"
	"maintquery/internal/engine/fallback"
	"maintquery/internal/engine/intent"
	"maintquery/internal/engine/router"
	"maintquery/internal/engine/security"
	"maintquery/internal/engine/sqlgen"
	"maintquery/internal/models"
)

// Engine orchestrates one answer per question.
type Engine struct {
	validator  *security.Validator
	cache      *cache.Service
	extractor  *extract.Extractor
	classifier *intent.Classifier
	router     *router.Router
	executor   *executor.Executor
	fallback   *fallback.Service
	generators map[models.RoutePath]sqlgen.Generator

	confidenceFloor float64
	logger          logger.Logger
	obs             *observability.Observability
}

// Dependencies collects the engine's collaborators. Everything is required
// except Observability, which may be nil in tests.
type Dependencies struct {
	Validator  *security.Validator
	Cache      *cache.Service
	Extractor  *extract.Extractor
	Classifier *intent.Classifier
	Router     *router.Router
	Executor   *executor.Executor
	Fallback   *fallback.Service
	Rules      sqlgen.Generator
	Generative sqlgen.Generator
}

func New(deps Dependencies, cfg config.FallbackConfig, log logger.Logger, obs *observability.Observability) *Engine {
	return &Engine{
		validator:  deps.Validator,
		cache:      deps.Cache,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		router:     deps.Router,
		executor:   deps.Executor,
		fallback:   deps.Fallback,
		generators: map[models.RoutePath]sqlgen.Generator{
			models.PathRuleBased:  deps.Rules,
			models.PathGenerative: deps.Generative,
		},
		confidenceFloor: cfg.ConfidenceFloor,
		logger:          log.With(map[string]interface{}{"component": "engine"}),
		obs:             obs,
	}
}

// Answer resolves one question end to end. It never returns an error: any
// failure degrades to a fallback answer tagged with its trigger.
func (e *Engine) Answer(ctx context.Context, query models.Query) models.Answer {
	requestID := uuid.New().String()
	start := time.Now()
	log := e.logger.With(map[string]interface{}{"requestId": requestID})

	assessment := e.validator.Assess(query.Text)
	if assessment.Verdict == models.VerdictReject {
		log.Warn("question rejected before processing", map[string]interface{}{
			"riskScore": assessment.RiskScore,
		})
		return e.finish(ctx, start, e.fallbackAnswer(requestID, models.TriggerValidationRejected, models.IntentGeneralQuery))
	}
	question := assessment.SanitizedText

	if entry, ok := e.cache.Lookup(ctx, question); ok {
		answer := entry.Answer
		answer.RequestID = requestID
		answer.Source = models.SourceCache
		log.Debug("answer served from cache", map[string]interface{}{
			"strategy": entry.StrategyUsed,
		})
		return e.finish(ctx, start, answer)
	}

	entities := e.extractor.Extract(question)
	classification := e.classifier.Classify(question, entities)

	route := e.router.Decide(ctx, classification.Intent, entities)
	req := &sqlgen.Request{
		Query:    models.Query{Text: question, ReceivedAt: query.ReceivedAt, SessionID: query.SessionID},
		Intent:   classification.Intent,
		Entities: entities,
	}

	answer, lastErr := e.attempt(ctx, log, route, req, classification, requestID)
	if answer != nil {
		e.cache.Store(ctx, question, *answer)
		return e.finish(ctx, start, *answer)
	}

	trigger := triggerFor(lastErr, classification.Intent)
	log.Warn("all answer paths exhausted", map[string]interface{}{
		"intent":  classification.Intent,
		"trigger": trigger,
		"error":   errString(lastErr),
	})
	return e.finish(ctx, start, e.fallbackAnswer(requestID, trigger, classification.Intent))
}

// attempt walks the route's generation paths in order, returning the first
// answer that survives generation, validation and execution.
func (e *Engine) attempt(
	ctx context.Context,
	log logger.Logger,
	route router.Route,
	req *sqlgen.Request,
	classification intent.Result,
	requestID string,
) (*models.Answer, error) {
	var lastErr error

	for _, path := range route.Attempts {
		gen, ok := e.generators[path]
		if !ok || gen == nil {
			continue
		}

		plan, err := gen.Generate(ctx, req)
		if path == models.PathGenerative {
			e.router.ReportGenerative(err == nil)
		}
		if err != nil {
			e.router.RecordOutcome(route, path, "generation_failed")
			if path == models.PathGenerative {
				metrics.GenerationFailures.WithLabelValues(string(stderrors.CodeOf(err))).Inc()
			}
			log.Debug("generation path failed", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			lastErr = err
			continue
		}

		// No plan reaches execution without an allow verdict from the
		// output gate, whichever generator produced it.
		verdict := e.validator.ValidateSQL(plan.SQLTemplate)
		if !verdict.Allowed() {
			e.router.RecordOutcome(route, path, "validation_rejected")
			lastErr = stderrors.NewValidationRejectedError(categoryNames(verdict.Categories), plan.SQLTemplate)
			continue
		}

		rows, err := e.executor.Execute(ctx, plan)
		if err != nil {
			e.router.RecordOutcome(route, path, "execution_failed")
			log.Warn("plan execution failed", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			lastErr = err
			continue
		}

		confidence := plan.Confidence
		if classification.Confidence < confidence {
			confidence = classification.Confidence
		}
		if confidence < e.confidenceFloor {
			e.router.RecordOutcome(route, path, "low_confidence")
			lastErr = stderrors.NewLowConfidenceError(
				fmt.Sprintf("confidence %.2f below floor %.2f", confidence, e.confidenceFloor))
			continue
		}

		e.router.RecordOutcome(route, path, "success")
		return &models.Answer{
			RequestID:  requestID,
			Text:       narrate(classification.Intent, rows),
			SQLUsed:    plan.SQLTemplate,
			Rows:       rows,
			RowCount:   len(rows),
			Confidence: confidence,
			Source:     sourceFor(plan.Generator),
			Intent:     classification.Intent,
		}, nil
	}

	return nil, lastErr
}

// fallbackAnswer wraps the fallback service's response as an Answer.
func (e *Engine) fallbackAnswer(requestID string, trigger models.FallbackTrigger, in models.Intent) models.Answer {
	resp := e.fallback.Respond(trigger, in)
	return models.Answer{
		RequestID:   requestID,
		Text:        resp.Text,
		Source:      models.SourceFallback,
		Intent:      in,
		Suggestions: resp.Suggestions,
	}
}

// finish publishes the answer's metrics and returns it unchanged.
func (e *Engine) finish(ctx context.Context, start time.Time, answer models.Answer) models.Answer {
	elapsed := time.Since(start)
	metrics.AnswersTotal.WithLabelValues(string(answer.Source)).Inc()
	metrics.AnswerDuration.WithLabelValues(string(answer.Source)).Observe(elapsed.Seconds())
	if e.obs != nil {
		e.obs.RecordAnswer(ctx, string(answer.Source))
		e.obs.RecordAnswerDuration(ctx, elapsed, string(answer.Source))
	}
	return answer
}

// ForceHealthCheck re-probes the generative backend immediately.
func (e *Engine) ForceHealthCheck(ctx context.Context) bool {
	return e.router.ForceHealthCheck(ctx)
}

// CacheStats exposes cache effectiveness for the operational surface.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// BreakerState exposes the breaker state for health reporting.
func (e *Engine) BreakerState() string {
	return string(e.router.BreakerState())
}

// triggerFor maps the last pipeline error to the fallback trigger shown to
// the user.
func triggerFor(err error, in models.Intent) models.FallbackTrigger {
	switch stderrors.CodeOf(err) {
	case stderrors.ErrCodeGenerationTimeout, stderrors.ErrCodeExecutionTimeout:
		return models.TriggerTimeout
	case stderrors.ErrCodeQuotaExhausted:
		return models.TriggerQuotaExhausted
	case stderrors.ErrCodeValidationRejected:
		return models.TriggerValidationRejected
	case stderrors.ErrCodeGenerationFailure:
		return models.TriggerGenerationError
	case stderrors.ErrCodeLowConfidence:
		return models.TriggerLowConfidence
	case stderrors.ErrCodePlanUnavailable:
		if in == models.IntentGeneralQuery {
			return models.TriggerOutOfDomain
		}
		return models.TriggerGenerationError
	default:
		return models.TriggerAllPathsExhausted
	}
}

func sourceFor(kind models.GeneratorKind) models.AnswerSource {
	if kind == models.GeneratorLLM {
		return models.SourceLLM
	}
	return models.SourceRules
}

func categoryNames(categories []models.ThreatCategory) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
