// internal/cache/cache.go
package cache

import (
	"strings"
	"sync"
	"time"
)

// Store is a TTL key/value cache shared across request handlers.
//
// Expired entries are kept around until they are overwritten, invalidated or
// evicted by the entry cap: GetStale can then serve the last known value when
// the data store is unreachable. Normal reads treat expiry as a miss.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	maxEntries int
	now        func() time.Time
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

const DefaultMaxEntries = 4096

// New returns a store bounded to maxEntries (DefaultMaxEntries when <= 0).
func New(maxEntries int) *Store {
	return NewWithClock(maxEntries, time.Now)
}

// NewWithClock is New with an injectable clock, used by tests.
func NewWithClock(maxEntries int, now func() time.Time) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		now:        now,
	}
}

// Get returns the value for key if it exists and has not expired.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// GetStale returns the last known value for key even past its expiry.
// Callers use it only as a fallback when the upstream store failed.
func (s *Store) GetStale(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl, overwriting any previous entry and
// resetting its expiry countdown.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictLocked()
	}
	s.entries[key] = &entry{value: value, expiresAt: s.now().Add(ttl)}
}

// Invalidate removes every entry whose key contains pattern (exact keys are a
// special case of this) and returns how many were dropped.
func (s *Store) Invalidate(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.entries {
		if strings.Contains(k, pattern) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Clear drops all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
}

// Len returns the number of entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// evictLocked frees room for one insert: expired entries first, otherwise the
// entry closest to expiry. Caller holds the write lock.
func (s *Store) evictLocked() {
	now := s.now()
	var oldestKey string
	var oldestAt time.Time
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			return
		}
		if oldestKey == "" || e.expiresAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.expiresAt
		}
	}
	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}
