package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

type bucket struct {
	hits    int
	resetAt time.Time
}

// MemoryStore keeps counters in process memory. It is only correct for a
// single API instance.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]bucket
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]bucket)}
}

func (s *MemoryStore) Hit(_ context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = bucket{resetAt: now.Add(window)}
	}
	b.hits++
	s.buckets[key] = b
	return b.hits, b.resetAt, nil
}

func (s *MemoryStore) Purge(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, b := range s.buckets {
		if !b.resetAt.After(before) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed, nil
}

var _ ports.RateLimitStore = (*MemoryStore)(nil)
