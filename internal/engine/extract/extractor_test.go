// internal/engine/extract/extractor_test.go
package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintquery/internal/common/logger"
	"maintquery/internal/models"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	}
}

func newTestExtractor(t *testing.T) *Extractor {
	return NewExtractorAt(logger.NewTestLogger(t), fixedClock())
}

func findEntities(entities []models.Entity, typ models.EntityType) []models.Entity {
	var out []models.Entity
	for _, e := range entities {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestExtract_LexicalEntities(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name       string
		question   string
		entityType models.EntityType
		normalized string
	}{
		{"portuguese equipment plural", "Quantos transformadores temos?", models.EntityEquipmentType, "Transformer"},
		{"english equipment", "How many pumps do we have?", models.EntityEquipmentType, "Pump"},
		{"accented equipment", "Listar as válvulas instaladas", models.EntityEquipmentType, "Valve"},
		{"portuguese maintenance type", "Quantas manutenções preventivas este ano?", models.EntityMaintenanceType, "Preventive"},
		{"english maintenance type", "Show corrective work orders", models.EntityMaintenanceType, "Corrective"},
		{"status portuguese", "Quais equipamentos estão parados?", models.EntityStatus, "Stopped"},
		{"status english", "List failed generators", models.EntityStatus, "Failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findEntities(e.Extract(tt.question), tt.entityType)
			require.NotEmpty(t, got, "expected a %s entity", tt.entityType)
			assert.Equal(t, tt.normalized, got[0].Normalized)
		})
	}
}

func TestExtract_EquipmentIDs(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		question   string
		normalized string
	}{
		{"Qual o status do equipamento EQ-1023?", "EQ-1023"},
		{"when was TR204 last serviced", "TR-204"},
		{"histórico da bomba pmp-00123", "PMP-00123"},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			ids := findEntities(e.Extract(tt.question), models.EntityEquipmentID)
			require.Len(t, ids, 1)
			assert.Equal(t, tt.normalized, ids[0].Normalized)
		})
	}
}

func TestExtract_LocationCodes(t *testing.T) {
	e := newTestExtractor(t)

	entities := e.Extract("List pumps at SUB-NORTE-01")
	locs := findEntities(entities, models.EntityLocationCode)
	require.Len(t, locs, 1)
	assert.Equal(t, "SUB-NORTE-01", locs[0].Normalized)

	// An equipment tag must never double as a location.
	entities = e.Extract("status of EQ-1023")
	assert.Empty(t, findEntities(entities, models.EntityLocationCode))
}

func TestExtract_AbsoluteDates(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"slash format is day first", "manutenções em 05/03/2025", "2025-03-05/2025-03-05"},
		{"iso format", "orders on 2025-03-05", "2025-03-05/2025-03-05"},
		{"dot format", "inspeções em 05.03.2025", "2025-03-05/2025-03-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := findEntities(e.Extract(tt.question), models.EntityDateRange)
			require.Len(t, dates, 1)
			assert.Equal(t, tt.want, dates[0].Normalized)
		})
	}
}

func TestExtract_InvalidCalendarDatesIgnored(t *testing.T) {
	e := newTestExtractor(t)

	dates := findEntities(e.Extract("orders on 31/02/2025"), models.EntityDateRange)
	assert.Empty(t, dates, "overflowing calendar dates must not normalize")
}

func TestExtract_RelativeDates(t *testing.T) {
	// Clock pinned to 2025-03-10.
	e := newTestExtractor(t)

	tests := []struct {
		question string
		want     string
	}{
		{"o que aconteceu ontem?", "2025-03-09/2025-03-09"},
		{"what happened yesterday", "2025-03-09/2025-03-09"},
		{"manutenções da semana passada", "2025-03-03/2025-03-09"},
		{"planned for next week", "2025-03-11/2025-03-17"},
		{"manutenções daqui a 7 dias", "2025-03-10/2025-03-17"},
		{"executed 3 days ago", "2025-03-07/2025-03-07"},
		{"últimos 30 dias de falhas", "2025-02-08/2025-03-10"},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			dates := findEntities(e.Extract(tt.question), models.EntityDateRange)
			require.NotEmpty(t, dates)
			assert.Equal(t, tt.want, dates[0].Normalized)
		})
	}
}

func TestExtract_TwoRelativeDatesKeepStableOrder(t *testing.T) {
	e := newTestExtractor(t)

	// Repeated runs must emit the ranges in lexicon order: "ontem" before
	// "amanhã", whichever appears first in the question.
	for i := 0; i < 10; i++ {
		dates := findEntities(e.Extract("manutenções previstas para amanhã e executadas ontem"), models.EntityDateRange)
		require.Len(t, dates, 2)
		assert.Equal(t, "2025-03-09/2025-03-09", dates[0].Normalized)
		assert.Equal(t, "2025-03-11/2025-03-11", dates[1].Normalized)
	}
}

func TestExtract_DedupePreservesFirstSeenOrder(t *testing.T) {
	e := newTestExtractor(t)

	// "transformador" appears twice and both passes can fire on EQ-1023.
	entities := e.Extract("transformador EQ-1023, o transformador EQ-1023 de novo")

	seen := map[string]int{}
	for _, ent := range entities {
		seen[ent.Key()]++
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, "entity %s duplicated", key)
	}

	require.GreaterOrEqual(t, len(entities), 2)
	assert.Equal(t, models.EntityEquipmentType, entities[0].Type, "lexical pass results come first")
}

func TestExtract_NoEntitiesIsValid(t *testing.T) {
	e := newTestExtractor(t)
	assert.Empty(t, e.Extract("bom dia, tudo bem?"))
}

func TestParseRange_RoundTrip(t *testing.T) {
	r, err := ParseRange("2025-03-03/2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03/2025-03-09", r.Normalized())

	_, err = ParseRange("not-a-range")
	assert.Error(t, err)
}
