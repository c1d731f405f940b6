// internal/models/query.go
package models

import "time"

// Query is the immutable per-request value carrying the raw question.
type Query struct {
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"receivedAt"`
	SessionID  string    `json:"sessionId,omitempty"`
}

// EntityType classifies a value extracted from question text.
type EntityType string

const (
	EntityEquipmentType   EntityType = "equipment_type"
	EntityEquipmentID     EntityType = "equipment_id"
	EntityMaintenanceType EntityType = "maintenance_type"
	EntityStatus          EntityType = "status"
	EntityDateRange       EntityType = "date_range"
	EntityLocationCode    EntityType = "location_code"
)

// Entity is a typed value extracted from a Query. Normalized holds the
// canonical form used for SQL binding and deduplication.
type Entity struct {
	Type       EntityType `json:"type"`
	Value      string     `json:"value"`
	Normalized string     `json:"normalized"`
}

// Key identifies an entity for order-preserving deduplication. Two extractor
// passes may fire on the same span; collapsing on (type, normalized) keeps
// parameter arrays free of duplicate elements.
func (e Entity) Key() string {
	return string(e.Type) + "\x00" + e.Normalized
}

// Intent is the single classified purpose of a question.
type Intent string

const (
	IntentLastMaintenanceExecuted Intent = "last_maintenance_executed"
	IntentUpcomingMaintenance     Intent = "upcoming_maintenance"
	IntentCountEquipment          Intent = "count_equipment"
	IntentCountMaintenance        Intent = "count_maintenance"
	IntentEquipmentStatus         Intent = "equipment_status"
	IntentMaintenanceHistory      Intent = "maintenance_history"
	IntentFailureAnalysis         Intent = "failure_analysis"
	IntentEquipmentSearch         Intent = "equipment_search"
	IntentLocationSearch          Intent = "location_search"
	IntentGeneralQuery            Intent = "general_query"
)

// AnswerSource tags which path produced an answer.
type AnswerSource string

const (
	SourceCache    AnswerSource = "cache"
	SourceRules    AnswerSource = "rules"
	SourceLLM      AnswerSource = "llm"
	SourceFallback AnswerSource = "fallback"
)

// Answer is the caller-facing result of the pipeline. The caller never sees
// stack traces or internal error codes, only text plus the source tag.
type Answer struct {
	RequestID   string                   `json:"requestId"`
	Text        string                   `json:"text"`
	SQLUsed     string                   `json:"sqlUsed,omitempty"`
	Rows        []map[string]interface{} `json:"rows,omitempty"`
	RowCount    int                      `json:"rowCount"`
	Confidence  float64                  `json:"confidence"`
	Source      AnswerSource             `json:"source"`
	Intent      Intent                   `json:"intent,omitempty"`
	Suggestions []string                 `json:"suggestions,omitempty"`
}
