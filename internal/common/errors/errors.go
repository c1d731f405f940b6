// Package errors provides standardized error handling for the query pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Non-fatal: extraction found nothing usable, degrade to a coarse query.
	ErrCodeExtractionAmbiguity ErrorCode = "EXTRACTION_AMBIGUITY"

	// The rule builder cannot satisfy the intent; try the secondary path.
	ErrCodePlanUnavailable ErrorCode = "PLAN_UNAVAILABLE"

	// Generative backend timeout, quota exhaustion or malformed output.
	ErrCodeGenerationFailure ErrorCode = "GENERATION_FAILURE"
	ErrCodeGenerationTimeout ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeQuotaExhausted    ErrorCode = "QUOTA_EXHAUSTED"

	// Security or syntax rejection of generated SQL. Fatal for the plan.
	ErrCodeValidationRejected ErrorCode = "VALIDATION_REJECTED"

	// The database collaborator reported an error.
	ErrCodeExecutionFailure ErrorCode = "EXECUTION_FAILURE"
	ErrCodeExecutionTimeout ErrorCode = "EXECUTION_TIMEOUT"

	// The winning plan's confidence landed below the serving floor.
	ErrCodeLowConfidence ErrorCode = "LOW_CONFIDENCE"

	// Every path failed; routed unconditionally to the fallback service.
	ErrCodeAllPathsExhausted ErrorCode = "ALL_PATHS_EXHAUSTED"
)

// StandardError represents a structured pipeline error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match two StandardErrors by code.
func (e *StandardError) Is(target error) bool {
	var se *StandardError
	if errors.As(target, &se) {
		return e.Code == se.Code
	}
	return false
}

// CodeOf extracts the ErrorCode from err, or empty when err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// NewExtractionAmbiguityError marks a question whose entities could not be
// resolved. Non-retryable: the pipeline degrades to a general query instead.
func NewExtractionAmbiguityError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionAmbiguity,
		Message:   "Could not extract unambiguous entities from question",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlanUnavailableError marks an intent the rule library has no template
// for, or one whose required entities are missing.
func NewPlanUnavailableError(intent, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePlanUnavailable,
		Message:   "Rule-based builder cannot produce a plan for this intent",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"intent": intent},
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailureError wraps a generative backend failure.
func NewGenerationFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailure,
		Message:   "Generative backend failed to produce usable SQL",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationTimeoutError marks a generative call that exceeded its budget.
func NewGenerationTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Generative backend call timed out",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQuotaExhaustedError marks upstream quota/rate-limit exhaustion.
func NewQuotaExhaustedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuotaExhausted,
		Message:   "Generative backend quota exhausted",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationRejectedError marks SQL rejected by the output validator.
// Logged at higher severity upstream since it may indicate an injection
// attempt; never retried with the same plan.
func NewValidationRejectedError(categories []string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationRejected,
		Message:   "Generated SQL rejected by security validation",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"categories": categories},
		Timestamp: time.Now().UTC(),
	}
}

// NewExecutionFailureError wraps a database-level error from the collaborator.
func NewExecutionFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExecutionFailure,
		Message:   "Query execution failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExecutionTimeoutError marks an execution that exceeded its deadline.
func NewExecutionTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExecutionTimeout,
		Message:   "Query execution timed out",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLowConfidenceError marks an answer suppressed by the confidence floor.
// Not retryable with the same question; the user is asked to add detail.
func NewLowConfidenceError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLowConfidence,
		Message:   "Answer confidence below serving floor",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAllPathsExhaustedError marks a request for which rules, generation and
// validation all failed. The fallback service handles it by contract.
func NewAllPathsExhaustedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAllPathsExhausted,
		Message:   "All generation paths exhausted",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
