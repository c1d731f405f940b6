// internal/models/fallback.go
package models

// FallbackTrigger names the condition that forced the fallback path.
type FallbackTrigger string

const (
	TriggerGenerationError    FallbackTrigger = "generation_error"
	TriggerTimeout            FallbackTrigger = "timeout"
	TriggerLowConfidence      FallbackTrigger = "low_confidence"
	TriggerEmptyResponse      FallbackTrigger = "empty_response"
	TriggerQuotaExhausted     FallbackTrigger = "quota_exhausted"
	TriggerValidationRejected FallbackTrigger = "validation_rejected"
	TriggerOutOfDomain        FallbackTrigger = "out_of_domain"
	TriggerAllPathsExhausted  FallbackTrigger = "all_paths_exhausted"
)

// FallbackResponse is the guaranteed-to-succeed answer of last resort.
// Always built fresh, never persisted.
type FallbackResponse struct {
	Text          string          `json:"text"`
	Suggestions   []string        `json:"suggestions,omitempty"`
	TriggerReason FallbackTrigger `json:"triggerReason"`
}
