// internal/engine/cache/similarity.go
package cache

import (
	"math"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// accentFold maps the accented characters common in Portuguese questions to
// their plain forms so "manutenção" and "manutencao" normalize identically.
var accentFold = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

// normalizeQuestion lowercases, folds accents and collapses the question to
// its word tokens. Two questions that differ only in casing, punctuation or
// diacritics normalize to the same string.
func normalizeQuestion(text string) string {
	lowered := accentFold.Replace(strings.ToLower(text))
	return strings.Join(tokenPattern.FindAllString(lowered, -1), " ")
}

// tokenCosine computes cosine similarity over word-frequency vectors of two
// normalized questions. Returns a value in [0, 1].
func tokenCosine(a, b string) float64 {
	va := tokenCounts(a)
	vb := tokenCounts(b)
	if len(va) == 0 || len(vb) == 0 {
		return 0
	}

	var dot, na, nb float64
	for token, ca := range va {
		na += float64(ca * ca)
		if cb, ok := vb[token]; ok {
			dot += float64(ca * cb)
		}
	}
	for _, cb := range vb {
		nb += float64(cb * cb)
	}

	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func tokenCounts(s string) map[string]int {
	counts := make(map[string]int)
	for _, token := range strings.Fields(s) {
		counts[token]++
	}
	return counts
}

// levenshtein computes the edit distance between two normalized questions,
// rune-wise, with a two-row rolling buffer.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
