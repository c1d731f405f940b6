// internal/engine/extract/extractor.go
package extract

import (
	"regexp"
	"strings"
	"time"

	"maintquery/internal/common/logger"
	"maintquery/internal/models"
)

// Domain identifier patterns. Equipment tags follow the plant convention
// PREFIX-NNNN; functional location codes are SAP-style dash-separated paths
// with at least three segments so they never collide with equipment tags.
var (
	reEquipmentID  = regexp.MustCompile(`(?i)\b(EQ|TR|PMP|GEN|CMP|MTR)-?(\d{3,6})\b`)
	reLocationCode = regexp.MustCompile(`\b([A-Z0-9]{2,6}(?:-[A-Z0-9]{2,6}){2,5})\b`)
	reHasLetter    = regexp.MustCompile(`[A-Z]`)
)

// Extractor turns raw question text into typed entities. It runs two
// independent passes, a lexical pass over vocabulary tables and a
// deterministic regex pass, then collapses duplicates while preserving
// first-seen order. The passes are overlapping evidence sources, not a
// partition: both may fire on the same span.
type Extractor struct {
	logger logger.Logger
	now    func() time.Time
}

func NewExtractor(log logger.Logger) *Extractor {
	return &Extractor{
		logger: log.With(map[string]interface{}{"component": "entity-extractor"}),
		now:    time.Now,
	}
}

// NewExtractorAt pins the clock used for relative date expressions.
func NewExtractorAt(log logger.Logger, now func() time.Time) *Extractor {
	e := NewExtractor(log)
	e.now = now
	return e
}

// Extract returns the de-duplicated, ordered entity list for text. Zero
// entities is a valid outcome, not an error; the intent classifier degrades
// to a coarser query.
func (e *Extractor) Extract(text string) []models.Entity {
	var found []models.Entity
	found = append(found, e.lexicalPass(text)...)
	found = append(found, e.patternPass(text)...)

	merged := dedupe(found)

	e.logger.Debug("entities extracted", map[string]interface{}{
		"raw":    len(found),
		"merged": len(merged),
	})

	return merged
}

// lexicalPass matches vocabulary tables against the question's tokens.
func (e *Extractor) lexicalPass(text string) []models.Entity {
	lowered := strings.ToLower(text)
	tokens := tokenize(lowered)

	var out []models.Entity
	for _, tok := range tokens {
		if canonical, ok := equipmentTypeLexicon[tok]; ok {
			out = append(out, models.Entity{Type: models.EntityEquipmentType, Value: tok, Normalized: canonical})
		}
		if canonical, ok := maintenanceTypeLexicon[tok]; ok {
			out = append(out, models.Entity{Type: models.EntityMaintenanceType, Value: tok, Normalized: canonical})
		}
		if canonical, ok := statusLexicon[tok]; ok {
			out = append(out, models.Entity{Type: models.EntityStatus, Value: tok, Normalized: canonical})
		}
	}
	return out
}

// patternPass matches domain identifier and date formats.
func (e *Extractor) patternPass(text string) []models.Entity {
	var out []models.Entity

	for _, m := range reEquipmentID.FindAllStringSubmatch(text, -1) {
		normalized := strings.ToUpper(m[1]) + "-" + m[2]
		out = append(out, models.Entity{Type: models.EntityEquipmentID, Value: m[0], Normalized: normalized})
	}

	for _, m := range reLocationCode.FindAllStringSubmatch(text, -1) {
		// Dash-separated dates share the shape; a real location code always
		// carries at least one letter. Skip anything the equipment pattern
		// already claimed.
		if !reHasLetter.MatchString(m[1]) || reEquipmentID.MatchString(m[1]) {
			continue
		}
		out = append(out, models.Entity{Type: models.EntityLocationCode, Value: m[0], Normalized: m[1]})
	}

	lowered := strings.ToLower(text)
	for _, r := range extractDates(lowered, e.now()) {
		out = append(out, models.Entity{Type: models.EntityDateRange, Value: r.Normalized(), Normalized: r.Normalized()})
	}

	return out
}

// dedupe collapses exact (type, normalized) duplicates preserving first-seen
// order. Duplicate elements in a parameter array previously broke driver
// binding in membership predicates, so this runs before any SQL is built.
func dedupe(entities []models.Entity) []models.Entity {
	seen := make(map[string]struct{}, len(entities))
	out := make([]models.Entity, 0, len(entities))
	for _, ent := range entities {
		key := ent.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ent)
	}
	return out
}

var reToken = regexp.MustCompile(`[\p{L}\p{N}]+`)

func tokenize(lowered string) []string {
	return reToken.FindAllString(lowered, -1)
}
