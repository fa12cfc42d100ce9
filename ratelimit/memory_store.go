package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process stand-in for the external key-value store,
// for development and tests. Entries expire independently.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memEntry
	now       func() time.Time
	lastSweep time.Time
}

type memEntry struct {
	value   string
	expires time.Time
}

// sweepEvery bounds how often expired entries are purged.
const sweepEvery = time.Minute

// NewMemoryStore returns an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock lets tests control time.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry), now: now}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(key, value, ttl)
	return nil
}

func (s *MemoryStore) SetIfAbsent(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expires) {
		return false, nil
	}
	s.put(key, value, ttl)
	return true, nil
}

// Len counts live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	now := s.now()
	for _, e := range s.entries {
		if now.Before(e.expires) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) put(key, value string, ttl time.Duration) {
	now := s.now()
	s.entries[key] = memEntry{value: value, expires: now.Add(ttl)}

	if now.Sub(s.lastSweep) >= sweepEvery {
		for k, e := range s.entries {
			if !now.Before(e.expires) {
				delete(s.entries, k)
			}
		}
		s.lastSweep = now
	}
}
