package cache

import (
	"context"
	"sync"
	"time"
)

type memItem struct {
	v       []byte
	expires time.Time
}

// DefaultSweepInterval is how often Set drops expired entries.
const DefaultSweepInterval = time.Minute

// MemoryStore is a process-local Store. Expired entries are removed when
// read and by a sweep that Set runs at most once per sweep interval, so keys
// that are never read again do not accumulate.
type MemoryStore struct {
	mu        sync.RWMutex
	items     map[string]memItem
	now       func() time.Time
	interval  time.Duration
	nextSweep time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:    make(map[string]memItem),
		now:      time.Now,
		interval: DefaultSweepInterval,
	}
}

// WithSweepInterval sets how often Set sweeps expired entries. Zero sweeps
// on every Set.
func (s *MemoryStore) WithSweepInterval(d time.Duration) *MemoryStore {
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !it.expires.IsZero() && s.now().After(it.expires) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return clone(it.v), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now()
	it := memItem{v: clone(value)}
	if ttl > 0 {
		it.expires = now.Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = it
	if !now.Before(s.nextSweep) {
		s.sweep(now)
	}
	return nil
}

// sweep drops every expired entry. Callers hold s.mu.
func (s *MemoryStore) sweep(now time.Time) {
	for k, it := range s.items {
		if !it.expires.IsZero() && now.After(it.expires) {
			delete(s.items, k)
		}
	}
	s.nextSweep = now.Add(s.interval)
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
