// internal/engine/router/complexity.go
package router

import (
	"maintquery/internal/models"
)

// simpleIntents are single-table count/list/status lookups the rule library
// answers deterministically and cheaply.
var simpleIntents = map[models.Intent]bool{
	models.IntentCountEquipment:   true,
	models.IntentCountMaintenance: true,
	models.IntentEquipmentStatus:  true,
	models.IntentEquipmentSearch:  true,
	models.IntentLocationSearch:   true,
}

// temporalIntents need joins and temporal reasoning.
var temporalIntents = map[models.Intent]bool{
	models.IntentLastMaintenanceExecuted: true,
	models.IntentUpcomingMaintenance:     true,
	models.IntentMaintenanceHistory:      true,
	models.IntentFailureAnalysis:         true,
}

// classifyComplexity triages a request into simple, medium or complex.
// Simple means a fixed-pattern single-table lookup; anything with temporal
// reasoning, joins or many conditions is medium; a question the pipeline
// could not structure at all is complex.
func classifyComplexity(intent models.Intent, entities []models.Entity) models.ComplexityClass {
	if intent == models.IntentGeneralQuery {
		return models.ComplexityComplex
	}

	hasDate := false
	for _, e := range entities {
		if e.Type == models.EntityDateRange {
			hasDate = true
			break
		}
	}

	if temporalIntents[intent] || hasDate || len(entities) > 3 {
		return models.ComplexityMedium
	}

	if simpleIntents[intent] {
		return models.ComplexitySimple
	}

	return models.ComplexityMedium
}
