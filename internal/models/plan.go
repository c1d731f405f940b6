// internal/models/plan.go
package models

// GeneratorKind names which SQL generator produced a plan.
type GeneratorKind string

const (
	GeneratorRules GeneratorKind = "rules"
	GeneratorLLM   GeneratorKind = "llm"
)

// QueryPlan is a parameterized SQL statement plus the context that produced
// it. Plans are owned by a single request and never cached; entities cross
// into SQL only as bound parameters.
type QueryPlan struct {
	SQLTemplate string        `json:"sqlTemplate"`
	Parameters  []interface{} `json:"parameters"`
	Generator   GeneratorKind `json:"generator"`
	Intent      Intent        `json:"intent"`
	Entities    []Entity      `json:"entities"`
	Confidence  float64       `json:"confidence"`
}
