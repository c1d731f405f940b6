// internal/engine/cache/store.go
package cache

import (
	"sync"
	"time"

	"maintquery/internal/common/metrics"
	"maintquery/internal/models"
)

// storedEntry wraps a cache entry with the access bookkeeping the eviction
// policy needs. normalized is precomputed once at insert so similarity scans
// never re-tokenize stored questions.
type storedEntry struct {
	entry      models.CacheEntry
	normalized string
	frequency  int
	lastAccess time.Time
}

// store is a bounded in-memory cache with LFU-with-aging eviction: the entry
// with the lowest access frequency goes first, ties broken by the longest
// time since last access. All access runs under one mutex; the similarity
// scan over entries is bounded by the configured capacity.
type store struct {
	mu       sync.Mutex
	entries  map[string]*storedEntry
	capacity int
	now      func() time.Time
}

func newStore(capacity int) *store {
	return &store{
		entries:  make(map[string]*storedEntry),
		capacity: capacity,
		now:      time.Now,
	}
}

// get returns the live entry for key, bumping its access stats. Expired
// entries are removed on sight.
func (s *store) get(key string) (models.CacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	se, ok := s.entries[key]
	if !ok {
		return models.CacheEntry{}, false
	}
	if se.entry.Expired(s.now()) {
		delete(s.entries, key)
		return models.CacheEntry{}, false
	}

	se.frequency++
	se.lastAccess = s.now()
	return se.entry, true
}

// put inserts or replaces the entry for key, evicting if at capacity.
func (s *store) put(key string, entry models.CacheEntry, normalized string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.capacity {
		s.evictLocked()
	}

	s.entries[key] = &storedEntry{
		entry:      entry,
		normalized: normalized,
		frequency:  1,
		lastAccess: s.now(),
	}
}

// scan visits every live entry under the lock. The visitor must not call
// back into the store. It returns the key of the best match, or empty.
func (s *store) scan(visit func(key string, normalized string, entry models.CacheEntry) bool) (models.CacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, se := range s.entries {
		if se.entry.Expired(now) {
			delete(s.entries, key)
			continue
		}
		if visit(key, se.normalized, se.entry) {
			se.frequency++
			se.lastAccess = now
			return se.entry, true
		}
	}
	return models.CacheEntry{}, false
}

// evictLocked removes the least valuable entry. Callers hold the mutex.
func (s *store) evictLocked() {
	var victim string
	var victimFreq int
	var victimAccess time.Time

	for key, se := range s.entries {
		if victim == "" ||
			se.frequency < victimFreq ||
			(se.frequency == victimFreq && se.lastAccess.Before(victimAccess)) {
			victim = key
			victimFreq = se.frequency
			victimAccess = se.lastAccess
		}
	}

	if victim != "" {
		delete(s.entries, victim)
		metrics.CacheEvictions.Inc()
	}
}

// len reports the number of stored entries, expired ones included.
func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
