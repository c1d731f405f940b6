// internal/engine/security/validator.go
package security

import (
	"strings"

	"maintquery/internal/common/logger"
	"maintquery/internal/common/metrics"
	"maintquery/internal/models"
)

const baselineScore = 100

// Validator scores text for injection risk. The same scoring model runs
// twice per request: Assess on the raw question (defense in depth) and
// ValidateSQL on any generated statement (the primary gate).
type Validator struct {
	allowThreshold int
	logger         logger.Logger
}

func NewValidator(allowThreshold int, log logger.Logger) *Validator {
	return &Validator{
		allowThreshold: allowThreshold,
		logger:         log.With(map[string]interface{}{"component": "threat-validator"}),
	}
}

// Assess scores arbitrary input text. Questions that only carry sanitizable
// patterns (comments, encoded fragments) come back with verdict sanitize and
// the offending sequences stripped; anything severe is rejected outright.
func (v *Validator) Assess(text string) models.ThreatAssessment {
	score := baselineScore
	var matched []models.ThreatCategory
	severe := false

	for _, p := range threatPatterns {
		if p.re.MatchString(text) {
			matched = append(matched, p.category)
			score -= p.penalty
			if severeCategories[p.category] {
				severe = true
			}
		}
	}

	score += bonuses(text)
	score = clamp(score)

	assessment := models.ThreatAssessment{
		RiskScore:     score,
		Categories:    matched,
		SanitizedText: text,
	}

	switch {
	case severe || score < v.allowThreshold:
		assessment.Verdict = models.VerdictReject
	case len(matched) > 0 && allSanitizable(matched):
		assessment.Verdict = models.VerdictSanitize
		assessment.SanitizedText = sanitize(text)
	case len(matched) > 0:
		// Matched something that can neither be stripped nor tolerated.
		assessment.Verdict = models.VerdictReject
	default:
		assessment.Verdict = models.VerdictAllow
	}

	if assessment.Verdict == models.VerdictReject {
		v.logger.Warn("input rejected by threat assessment", map[string]interface{}{
			"riskScore":  score,
			"categories": matched,
		})
		for _, c := range matched {
			metrics.ValidationRejections.WithLabelValues(string(c)).Inc()
		}
	}

	return assessment
}

// ValidateSQL is the strict allow-list gate every generated statement must
// pass before execution. Unlike Assess, nothing is ever sanitized here: a
// statement either begins with a read-only SELECT, carries zero threat
// categories and scores above threshold, or it is rejected. A rejected plan
// is never "fixed" and executed.
func (v *Validator) ValidateSQL(sql string) models.ThreatAssessment {
	trimmed := strings.TrimSpace(sql)
	score := baselineScore
	var matched []models.ThreatCategory

	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		matched = append(matched, models.ThreatNonSelectOutput)
		score = 0
	}

	for _, p := range threatPatterns {
		if p.re.MatchString(trimmed) {
			matched = append(matched, p.category)
			score -= p.penalty
		}
	}

	score = clamp(score)

	assessment := models.ThreatAssessment{
		RiskScore:     score,
		Categories:    matched,
		SanitizedText: trimmed,
	}

	if len(matched) > 0 || score < v.allowThreshold {
		assessment.Verdict = models.VerdictReject
		v.logger.Error("generated SQL rejected", map[string]interface{}{
			"riskScore":  score,
			"categories": matched,
		})
		for _, c := range matched {
			metrics.ValidationRejections.WithLabelValues(string(c)).Inc()
		}
		return assessment
	}

	assessment.Verdict = models.VerdictAllow
	return assessment
}

// bonuses rewards expected domain vocabulary and natural-question phrasing.
func bonuses(text string) int {
	lowered := strings.ToLower(text)
	bonus := 0

	hits := 0
	for _, word := range domainVocabulary {
		if strings.Contains(lowered, word) {
			hits++
		}
	}
	if hits > 4 {
		hits = 4
	}
	bonus += hits * 5

	for _, marker := range questionMarkers {
		if strings.HasPrefix(lowered, marker) {
			bonus += 10
			break
		}
	}
	if strings.HasSuffix(strings.TrimSpace(lowered), "?") {
		bonus += 5
	}

	return bonus
}

// allSanitizable reports whether every matched category can be stripped from
// a raw question without changing its meaning.
func allSanitizable(categories []models.ThreatCategory) bool {
	for _, c := range categories {
		if !sanitizableCategories[c] {
			return false
		}
	}
	return true
}

// sanitize strips comment and encoded-bypass sequences from a raw question.
func sanitize(text string) string {
	replacer := strings.NewReplacer(
		"--", " ",
		"/*", " ",
		"*/", " ",
		"%27", " ",
		"%22", " ",
		"%3b", " ",
		"%3B", " ",
	)
	return strings.Join(strings.Fields(replacer.Replace(text)), " ")
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
