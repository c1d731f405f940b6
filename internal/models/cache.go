// internal/models/cache.go
package models

import "time"

// CacheStrategy names the lookup strategy that produced a cache hit.
type CacheStrategy string

const (
	CacheExact      CacheStrategy = "exact"
	CacheNormalized CacheStrategy = "normalized"
	CacheSemantic   CacheStrategy = "semantic"
	CacheFuzzy      CacheStrategy = "fuzzy"
)

// CacheEntry stores a finished answer keyed by the question that produced it.
// Plans are never cached; only the final answer is shared across requests.
type CacheEntry struct {
	Key          string        `json:"key"`
	StrategyUsed CacheStrategy `json:"strategyUsed,omitempty"`
	Answer       Answer        `json:"answer"`
	Confidence   float64       `json:"confidence"`
	RowCount     int           `json:"rowCount"`
	TTL          time.Duration `json:"ttl"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Expired reports whether the entry's TTL has elapsed at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return now.After(e.CreatedAt.Add(e.TTL))
}
