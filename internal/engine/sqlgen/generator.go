// internal/engine/sqlgen/generator.go
package sqlgen

import (
	"context"

	"maintquery/internal/models"
)

// Request is everything a generator needs to produce a plan for one question.
type Request struct {
	Query    models.Query
	Intent   models.Intent
	Entities []models.Entity
}

// Generator is the single capability both SQL producers implement. The
// router depends only on this interface, so adding a third generator never
// touches routing logic.
type Generator interface {
	Kind() models.GeneratorKind
	Generate(ctx context.Context, req *Request) (*models.QueryPlan, error)
}
