// internal/engine/extract/dates.go
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date formats seen in imported work orders: DD/MM/YYYY (the dataset's home
// locale), ISO YYYY-MM-DD and DD.MM.YYYY from SAP exports.
var (
	reDateSlash = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	reDateISO   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	reDateDot   = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)

	reInNDays   = regexp.MustCompile(`\b(?:in|em|daqui a)\s+(\d{1,3})\s+(?:days?|dias?)\b`)
	reNDaysAgo  = regexp.MustCompile(`\b(?:ha|há)\s+(\d{1,3})\s+dias?\b|\b(\d{1,3})\s+days?\s+ago\b`)
	reLastNDays = regexp.MustCompile(`\b(?:last|ultimos|últimos)\s+(\d{1,3})\s+(?:days?|dias?)\b`)
)

// relativeLexicon lists fixed relative expressions with their day offset
// range [from, to] relative to today. The slice order is the order matching
// ranges are emitted in, so questions carrying several relative expressions
// always produce the same entity sequence.
var relativeLexicon = []struct {
	expr     string
	from, to int
}{
	{"hoje", 0, 0},
	{"today", 0, 0},
	{"ontem", -1, -1},
	{"yesterday", -1, -1},
	{"anteontem", -2, -2},
	{"amanha", 1, 1},
	{"amanhã", 1, 1},
	{"tomorrow", 1, 1},
	{"semana passada", -7, -1},
	{"last week", -7, -1},
	{"proxima semana", 1, 7},
	{"próxima semana", 1, 7},
	{"next week", 1, 7},
	{"mes passado", -31, -1},
	{"mês passado", -31, -1},
	{"last month", -31, -1},
	{"proximo mes", 1, 31},
	{"próximo mês", 1, 31},
	{"next month", 1, 31},
	{"este mes", -15, 15},
	{"este mês", -15, 15},
	{"this month", -15, 15},
}

// DateRange is the normalized form of every date entity: a closed interval
// rendered as "YYYY-MM-DD/YYYY-MM-DD". Single dates collapse to From==To.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Normalized() string {
	return r.From.Format("2006-01-02") + "/" + r.To.Format("2006-01-02")
}

// extractDates finds absolute and relative date expressions in lowered text.
// now anchors relative expressions.
func extractDates(lowered string, now time.Time) []DateRange {
	var out []DateRange
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for _, m := range reDateSlash.FindAllStringSubmatch(lowered, -1) {
		if d, ok := buildDate(m[3], m[2], m[1]); ok {
			out = append(out, DateRange{From: d, To: d})
		}
	}
	for _, m := range reDateISO.FindAllStringSubmatch(lowered, -1) {
		if d, ok := buildDate(m[1], m[2], m[3]); ok {
			out = append(out, DateRange{From: d, To: d})
		}
	}
	for _, m := range reDateDot.FindAllStringSubmatch(lowered, -1) {
		if d, ok := buildDate(m[3], m[2], m[1]); ok {
			out = append(out, DateRange{From: d, To: d})
		}
	}

	for _, rel := range relativeLexicon {
		if strings.Contains(lowered, rel.expr) {
			out = append(out, DateRange{
				From: today.AddDate(0, 0, rel.from),
				To:   today.AddDate(0, 0, rel.to),
			})
		}
	}

	if m := reInNDays.FindStringSubmatch(lowered); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			d := today.AddDate(0, 0, n)
			out = append(out, DateRange{From: today, To: d})
		}
	}
	if m := reNDaysAgo.FindStringSubmatch(lowered); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		if n, err := strconv.Atoi(digits); err == nil {
			d := today.AddDate(0, 0, -n)
			out = append(out, DateRange{From: d, To: d})
		}
	}
	if m := reLastNDays.FindStringSubmatch(lowered); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			out = append(out, DateRange{From: today.AddDate(0, 0, -n), To: today})
		}
	}

	return out
}

func buildDate(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31/02 becomes March); reject those.
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

// ParseRange parses a normalized "YYYY-MM-DD/YYYY-MM-DD" value back into a
// DateRange. Used by the intent classifier and the SQL builders.
func ParseRange(normalized string) (DateRange, error) {
	parts := strings.SplitN(normalized, "/", 2)
	if len(parts) != 2 {
		return DateRange{}, fmt.Errorf("malformed date range %q", normalized)
	}
	from, err := time.Parse("2006-01-02", parts[0])
	if err != nil {
		return DateRange{}, err
	}
	to, err := time.Parse("2006-01-02", parts[1])
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{From: from, To: to}, nil
}
