// internal/engine/intent/classifier_test.go
package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"maintquery/internal/common/logger"
	"maintquery/internal/models"
)

func newTestClassifier(t *testing.T) *Classifier {
	return NewClassifierAt(logger.NewTestLogger(t), func() time.Time {
		return time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	})
}

func TestClassify_TemporalDisambiguation(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name     string
		question string
		want     models.Intent
	}{
		{
			"execution verb selects executed history",
			"Quando foi executada a última manutenção do TR-204?",
			models.IntentLastMaintenanceExecuted,
		},
		{
			"english execution verb",
			"When was maintenance last performed on pump PMP-001?",
			models.IntentLastMaintenanceExecuted,
		},
		{
			"planning verb selects upcoming",
			"Qual a próxima manutenção programada?",
			models.IntentUpcomingMaintenance,
		},
		{
			"english planning verb",
			"What maintenance is scheduled for the generators?",
			models.IntentUpcomingMaintenance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.question, nil)
			assert.Equal(t, tt.want, got.Intent)
			assert.GreaterOrEqual(t, got.Confidence, 0.9)
		})
	}
}

func TestClassify_ExplicitDatesActAsTemporalSignals(t *testing.T) {
	c := newTestClassifier(t)

	// Clock pinned to 2025-03-10: one range entirely past, one entirely future.
	pastRange := models.Entity{Type: models.EntityDateRange, Normalized: "2025-02-01/2025-02-28"}
	futureRange := models.Entity{Type: models.EntityDateRange, Normalized: "2025-04-01/2025-04-30"}

	got := c.Classify("manutenções do transformador nesse período", []models.Entity{pastRange})
	assert.Equal(t, models.IntentLastMaintenanceExecuted, got.Intent)
	assert.True(t, got.PastSignal)
	assert.False(t, got.FutureSignal)

	got = c.Classify("manutenções do transformador nesse período", []models.Entity{futureRange})
	assert.Equal(t, models.IntentUpcomingMaintenance, got.Intent)
	assert.True(t, got.FutureSignal)
	assert.False(t, got.PastSignal)
}

func TestClassify_ConflictingSignalsFallToKeywordScoring(t *testing.T) {
	c := newTestClassifier(t)

	// Both signals present: the decision table must not guess a direction.
	got := c.Classify("a manutenção que foi executada será repetida na próxima semana?", nil)
	assert.NotEqual(t, models.IntentLastMaintenanceExecuted, got.Intent)
	assert.NotEqual(t, models.IntentUpcomingMaintenance, got.Intent)
	assert.True(t, got.PastSignal)
	assert.True(t, got.FutureSignal)
}

func TestClassify_KeywordScoring(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name     string
		question string
		entities []models.Entity
		want     models.Intent
	}{
		{
			"count of equipment",
			"Quantos transformadores temos?",
			[]models.Entity{{Type: models.EntityEquipmentType, Normalized: "Transformer"}},
			models.IntentCountEquipment,
		},
		{
			"count of work orders",
			"How many preventive maintenance orders this year?",
			nil,
			models.IntentCountMaintenance,
		},
		{
			"status lookup",
			"Qual o status do equipamento EQ-1023?",
			[]models.Entity{{Type: models.EntityEquipmentID, Normalized: "EQ-1023"}},
			models.IntentEquipmentStatus,
		},
		{
			"failure analysis",
			"Quais equipamentos apresentaram mais falhas?",
			nil,
			models.IntentFailureAnalysis,
		},
		{
			"location search",
			"Quais bombas estão em SUB-NORTE-01?",
			[]models.Entity{{Type: models.EntityLocationCode, Normalized: "SUB-NORTE-01"}},
			models.IntentLocationSearch,
		},
		{
			"maintenance history",
			"Mostrar o histórico de manutenção da bomba PMP-001",
			[]models.Entity{{Type: models.EntityEquipmentID, Normalized: "PMP-001"}},
			models.IntentMaintenanceHistory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.question, tt.entities)
			assert.Equal(t, tt.want, got.Intent)
		})
	}
}

func TestClassify_GeneralQueryFloor(t *testing.T) {
	c := newTestClassifier(t)

	got := c.Classify("me conte uma curiosidade sobre a usina", nil)
	assert.Equal(t, models.IntentGeneralQuery, got.Intent)
	assert.LessOrEqual(t, got.Confidence, 0.2)
}
