// internal/engine/intent/classifier.go
package intent

import (
	"strings"
	"time"

	"maintquery/internal/common/logger"
	"maintquery/internal/engine/extract"
	"maintquery/internal/models"
)

// Classifier assigns exactly one intent to a question. Temporal
// disambiguation runs first: nouns like "maintenance" or "test" conflate
// "when was X done" with "when is X planned", and reporting a planned date as
// an execution date is a factually false answer, not merely an unhelpful one.
type Classifier struct {
	logger logger.Logger
	now    func() time.Time
}

// Result carries the chosen intent plus the evidence behind it.
type Result struct {
	Intent       models.Intent
	Confidence   float64
	PastSignal   bool
	FutureSignal bool
}

func NewClassifier(log logger.Logger) *Classifier {
	return &Classifier{
		logger: log.With(map[string]interface{}{"component": "intent-classifier"}),
		now:    time.Now,
	}
}

// NewClassifierAt pins the clock used to compare explicit dates with today.
func NewClassifierAt(log logger.Logger, now func() time.Time) *Classifier {
	c := NewClassifier(log)
	c.now = now
	return c
}

// Classify resolves the single intent for text given its extracted entities.
func (c *Classifier) Classify(text string, entities []models.Entity) Result {
	lowered := strings.ToLower(text)

	past := containsAny(lowered, pastIndicators)
	future := containsAny(lowered, futureIndicators)

	// Explicit dates weigh in as past/future signals against today.
	today := c.now().UTC().Truncate(24 * time.Hour)
	for _, ent := range entities {
		if ent.Type != models.EntityDateRange {
			continue
		}
		r, err := extract.ParseRange(ent.Normalized)
		if err != nil {
			continue
		}
		if r.To.Before(today) {
			past = true
		}
		if r.From.After(today) {
			future = true
		}
	}

	maintenanceTopic := containsAny(lowered, maintenanceKeywords)

	var result Result
	switch {
	case maintenanceTopic && past && !future:
		result = Result{Intent: models.IntentLastMaintenanceExecuted, Confidence: 0.9}
	case maintenanceTopic && future && !past:
		result = Result{Intent: models.IntentUpcomingMaintenance, Confidence: 0.9}
	default:
		result = c.scoreKeywords(lowered, entities)
	}

	result.PastSignal = past
	result.FutureSignal = future

	c.logger.Debug("intent classified", map[string]interface{}{
		"intent":     result.Intent,
		"confidence": result.Confidence,
		"past":       past,
		"future":     future,
	})

	return result
}

// scoreKeywords is the tie-breaking vocabulary scorer. Ties resolve by the
// fixed precedence of the iteration order below, ending in GeneralQuery.
func (c *Classifier) scoreKeywords(lowered string, entities []models.Entity) Result {
	scores := map[models.Intent]int{}

	countSignal := containsAny(lowered, countKeywords)
	maintenanceTopic := containsAny(lowered, maintenanceKeywords)

	if countSignal && maintenanceTopic {
		scores[models.IntentCountMaintenance] += 3
	} else if countSignal {
		scores[models.IntentCountEquipment] += 3
	}
	if containsAny(lowered, statusKeywords) {
		scores[models.IntentEquipmentStatus] += 2
	}
	if containsAny(lowered, historyKeywords) && maintenanceTopic {
		scores[models.IntentMaintenanceHistory] += 2
	}
	if containsAny(lowered, failureKeywords) {
		scores[models.IntentFailureAnalysis] += 2
	}
	if containsAny(lowered, searchKeywords) {
		scores[models.IntentEquipmentSearch] += 1
	}

	for _, ent := range entities {
		switch ent.Type {
		case models.EntityLocationCode:
			scores[models.IntentLocationSearch] += 2
		case models.EntityStatus:
			scores[models.IntentEquipmentStatus]++
		case models.EntityEquipmentID, models.EntityEquipmentType:
			scores[models.IntentEquipmentSearch]++
		case models.EntityMaintenanceType:
			scores[models.IntentMaintenanceHistory]++
		}
	}

	best := models.IntentGeneralQuery
	bestScore := 0
	for _, candidate := range precedence {
		if s := scores[candidate]; s > bestScore {
			best = candidate
			bestScore = s
		}
	}

	confidence := 0.4
	if bestScore >= 3 {
		confidence = 0.8
	} else if bestScore == 2 {
		confidence = 0.6
	} else if bestScore == 0 {
		confidence = 0.2
	}

	return Result{Intent: best, Confidence: confidence}
}

// precedence fixes tie-breaking order; GeneralQuery stays the implicit floor.
var precedence = []models.Intent{
	models.IntentCountMaintenance,
	models.IntentCountEquipment,
	models.IntentEquipmentStatus,
	models.IntentMaintenanceHistory,
	models.IntentFailureAnalysis,
	models.IntentLocationSearch,
	models.IntentEquipmentSearch,
}

func containsAny(lowered string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lowered, m) {
			return true
		}
	}
	return false
}
