package ratelimit

import (
	"sync"
	"time"
)

// localStore is the per-process fallback counter store. It accepts a
// weaker guarantee than Redis (per-instance counting instead of global)
// but keeps the fixed-window semantics intact.
type localStore struct {
	mu       sync.Mutex
	counters map[string]*localCounter
}

type localCounter struct {
	count     int64
	expiresAt time.Time
}

func newLocalStore() *localStore {
	return &localStore{counters: make(map[string]*localCounter)}
}

// Increment bumps the counter for key, creating a fresh window when
// none exists or the previous one has rolled over. The mutex guards the
// whole read-increment-write sequence against racing goroutines.
func (s *localStore) Increment(key string, window time.Duration, now time.Time) (count, retryAfterSeconds int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.counters) > maxLocalKeys {
		s.pruneLocked(now)
	}

	counter, ok := s.counters[key]
	if !ok || !counter.expiresAt.After(now) {
		counter = &localCounter{expiresAt: now.Add(window)}
		s.counters[key] = counter
	}
	counter.count++

	remaining := counter.expiresAt.Sub(now)
	return counter.count, int64(remaining.Seconds()), nil
}

const maxLocalKeys = 10000

// pruneLocked drops rolled-over windows. Caller holds the mutex.
func (s *localStore) pruneLocked(now time.Time) {
	for key, counter := range s.counters {
		if !counter.expiresAt.After(now) {
			delete(s.counters, key)
		}
	}
}
