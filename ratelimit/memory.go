package ratelimit

import (
	"context"
	"sync"
	"time"
)

// windowCounter tracks one key's current window.
type windowCounter struct {
	count int
	start time.Time
}

// MemoryStore is an in-process fixed-window counter table. It is the
// only mutable state shared across concurrent requests; a single mutex
// serializes increments and window rollovers. Counters whose window
// has elapsed are reset lazily on access and swept periodically so the
// table does not grow without bound.
type MemoryStore struct {
	cfg Config

	mu       sync.Mutex
	counters map[string]*windowCounter

	now        func() time.Time
	sweepTimer *time.Timer
}

// NewMemoryStore creates a memory store and starts its sweep timer.
// Call Close when done.
func NewMemoryStore(cfg Config) *MemoryStore {
	s := &MemoryStore{
		cfg:      cfg.withDefaults(),
		counters: make(map[string]*windowCounter),
		now:      time.Now,
	}
	s.sweepTimer = time.AfterFunc(s.cfg.Window, s.sweep)
	return s
}

// Take counts one request against key and decides whether it is under
// the ceiling. Requests over the ceiling do not grow the count.
func (s *MemoryStore) Take(_ context.Context, key string) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	wc, ok := s.counters[key]
	if !ok || now.Sub(wc.start) >= s.cfg.Window {
		wc = &windowCounter{start: now}
		s.counters[key] = wc
	}

	d := Decision{
		Limit:  s.cfg.Limit,
		Window: s.cfg.Window,
		Reset:  wc.start.Add(s.cfg.Window),
	}

	if wc.count >= s.cfg.Limit {
		d.RetryAfter = d.Reset.Sub(now)
		return d, nil
	}

	wc.count++
	d.Allowed = true
	d.Remaining = s.cfg.Limit - wc.count
	return d, nil
}

// sweep removes counters whose window has elapsed, then re-arms itself.
func (s *MemoryStore) sweep() {
	s.mu.Lock()
	now := s.now()
	for key, wc := range s.counters {
		if now.Sub(wc.start) >= s.cfg.Window {
			delete(s.counters, key)
		}
	}
	s.mu.Unlock()

	s.sweepTimer.Reset(s.cfg.Window)
}

// Close stops the sweep timer.
func (s *MemoryStore) Close() {
	s.sweepTimer.Stop()
}
