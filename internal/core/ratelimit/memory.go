package ratelimit

import (
	"context"
	"sync"
	"time"
)

type record struct {
	windowStart time.Time
	count       int
}

// MemoryStore keeps per-key windows in a mutex-guarded map. Suitable for
// single-instance deployments; state does not survive restarts.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*record

	// now is swappable for tests
	now func() time.Time
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Incr counts one request for key, resetting the record when its window expired
func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || now.Sub(rec.windowStart) >= window {
		rec = &record{windowStart: now}
		s.records[key] = rec
	}
	rec.count++

	reset := window - now.Sub(rec.windowStart)
	return rec.count, reset, nil
}

// Sweep drops records whose window has fully elapsed. Called periodically so
// one-off clients do not accumulate forever.
func (s *MemoryStore) Sweep(window time.Duration) int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, rec := range s.records {
		if now.Sub(rec.windowStart) >= window {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}

// Janitor sweeps expired records every interval until stop is closed
func (s *MemoryStore) Janitor(interval, window time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep(window)
		case <-stop:
			return
		}
	}
}
