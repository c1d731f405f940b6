// internal/engine/cache/service.go
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"maintquery/internal/common/config"
	"maintquery/internal/common/database"
	"maintquery/internal/common/logger"
	"maintquery/internal/common/metrics"
	"maintquery/internal/models"
)

const redisKeyPrefix = "qcache:"

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Size   int              `json:"size"`
	Hits   map[string]int64 `json:"hits"`
	Misses int64            `json:"misses"`
	Stores int64            `json:"stores"`
}

// Service caches finished answers keyed by the question text. Lookups run
// four strategies in order of decreasing precision: exact text, normalized
// text, token-cosine similarity, then Levenshtein distance. Entries live in
// a bounded in-memory store; when Redis is configured, writes go through to
// it and exact misses rehydrate from it.
type Service struct {
	cfg    config.CacheConfig
	store  *store
	redis  *database.RedisClient
	logger logger.Logger
	now    func() time.Time

	exactHits      atomic.Int64
	normalizedHits atomic.Int64
	semanticHits   atomic.Int64
	fuzzyHits      atomic.Int64
	misses         atomic.Int64
	stores         atomic.Int64
}

// NewService builds the cache. redis may be nil for memory-only operation.
func NewService(cfg config.CacheConfig, redis *database.RedisClient, log logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		store:  newStore(cfg.Capacity),
		redis:  redis,
		logger: log.With(map[string]interface{}{"component": "cache-service"}),
		now:    time.Now,
	}
}

// Lookup tries each strategy in order and returns the first hit. The
// returned entry's StrategyUsed names the strategy that matched.
func (s *Service) Lookup(ctx context.Context, question string) (models.CacheEntry, bool) {
	trimmed := strings.TrimSpace(question)
	normalized := normalizeQuestion(question)

	if entry, ok := s.store.get(trimmed); ok {
		return s.hit(entry, models.CacheExact, &s.exactHits)
	}
	if entry, ok := s.rehydrate(ctx, trimmed); ok {
		return s.hit(entry, models.CacheExact, &s.exactHits)
	}
	metrics.CacheLookups.WithLabelValues(string(models.CacheExact), "miss").Inc()

	if entry, ok := s.store.scan(func(_, stored string, _ models.CacheEntry) bool {
		return stored == normalized
	}); ok {
		return s.hit(entry, models.CacheNormalized, &s.normalizedHits)
	}
	metrics.CacheLookups.WithLabelValues(string(models.CacheNormalized), "miss").Inc()

	if entry, ok := s.store.scan(func(_, stored string, _ models.CacheEntry) bool {
		return tokenCosine(normalized, stored) >= s.cfg.SimilarityThreshold
	}); ok {
		return s.hit(entry, models.CacheSemantic, &s.semanticHits)
	}
	metrics.CacheLookups.WithLabelValues(string(models.CacheSemantic), "miss").Inc()

	if entry, ok := s.store.scan(func(_, stored string, _ models.CacheEntry) bool {
		return levenshtein(normalized, stored) <= s.cfg.FuzzyMaxDistance
	}); ok {
		return s.hit(entry, models.CacheFuzzy, &s.fuzzyHits)
	}
	metrics.CacheLookups.WithLabelValues(string(models.CacheFuzzy), "miss").Inc()

	s.misses.Add(1)
	return models.CacheEntry{}, false
}

// Store caches a finished answer. TTL scales with the answer's confidence
// and row count between the configured bounds; empty result sets always get
// the minimum so a transiently empty answer cannot linger.
func (s *Service) Store(ctx context.Context, question string, answer models.Answer) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return
	}

	entry := models.CacheEntry{
		Key:        trimmed,
		Answer:     answer,
		Confidence: answer.Confidence,
		RowCount:   answer.RowCount,
		TTL:        s.ttlFor(answer),
		CreatedAt:  s.now(),
	}

	s.store.put(trimmed, entry, normalizeQuestion(question))
	s.stores.Add(1)

	if s.redis != nil {
		payload, err := json.Marshal(entry)
		if err == nil {
			err = s.redis.Set(ctx, redisKeyPrefix+trimmed, payload, entry.TTL)
		}
		if err != nil {
			s.logger.Warn("redis write-through failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

// Stats reports cache effectiveness counters and current size.
func (s *Service) Stats() Stats {
	return Stats{
		Size: s.store.len(),
		Hits: map[string]int64{
			string(models.CacheExact):      s.exactHits.Load(),
			string(models.CacheNormalized): s.normalizedHits.Load(),
			string(models.CacheSemantic):   s.semanticHits.Load(),
			string(models.CacheFuzzy):      s.fuzzyHits.Load(),
		},
		Misses: s.misses.Load(),
		Stores: s.stores.Load(),
	}
}

func (s *Service) hit(entry models.CacheEntry, strategy models.CacheStrategy, counter *atomic.Int64) (models.CacheEntry, bool) {
	entry.StrategyUsed = strategy
	counter.Add(1)
	metrics.CacheLookups.WithLabelValues(string(strategy), "hit").Inc()
	return entry, true
}

// rehydrate pulls an exact-key entry back from Redis into local memory.
func (s *Service) rehydrate(ctx context.Context, key string) (models.CacheEntry, bool) {
	if s.redis == nil {
		return models.CacheEntry{}, false
	}

	raw, err := s.redis.Get(ctx, redisKeyPrefix+key)
	if err != nil {
		return models.CacheEntry{}, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		s.logger.Warn("discarding undecodable cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return models.CacheEntry{}, false
	}
	if entry.Expired(s.now()) {
		return models.CacheEntry{}, false
	}

	s.store.put(key, entry, normalizeQuestion(key))
	return entry, true
}

// Row counts at or above the saturation point stop raising the TTL; below
// it they discount the confidence scale down to the floor, so thin-data
// answers expire sooner than well-supported ones at equal confidence.
const (
	ttlRowSaturation = 100.0
	ttlRowFloor      = 0.5
)

// ttlFor maps answer quality to a TTL inside [MinTTL, MaxTTL]. Both the
// confidence score and the number of underlying rows scale the TTL up.
func (s *Service) ttlFor(answer models.Answer) time.Duration {
	minTTL := time.Duration(s.cfg.MinTTL) * time.Millisecond
	maxTTL := time.Duration(s.cfg.MaxTTL) * time.Millisecond

	if answer.RowCount == 0 {
		return minTTL
	}

	confidence := answer.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	rowFactor := float64(answer.RowCount) / ttlRowSaturation
	if rowFactor > 1 {
		rowFactor = 1
	}

	scale := confidence * (ttlRowFloor + (1-ttlRowFloor)*rowFactor)
	ttl := minTTL + time.Duration(float64(maxTTL-minTTL)*scale)
	if ttl < minTTL {
		return minTTL
	}
	if ttl > maxTTL {
		return maxTTL
	}
	return ttl
}
