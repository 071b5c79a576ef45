// Package memory provides an in-memory implementation of webhook.ReplayGuard.
// It only protects a single process; use storage/redis when several replicas
// receive deliveries.
package memory

import (
	"context"
	"sync"
	"time"
)

// DefaultCleanupInterval is the number of Remember calls between sweeps of
// expired keys.
const DefaultCleanupInterval = 1000

// Storage implements webhook.ReplayGuard using an in-memory map
type Storage struct {
	mu              sync.Mutex
	seen            map[string]time.Time // key -> expiry
	now             func() time.Time
	calls           int
	cleanupInterval int
}

// Option configures Storage
type Option func(*Storage)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

// WithCleanupInterval sets how many Remember calls pass between sweeps
func WithCleanupInterval(n int) Option {
	return func(s *Storage) {
		if n > 0 {
			s.cleanupInterval = n
		}
	}
}

// New creates a new in-memory replay guard
func New(opts ...Option) *Storage {
	s := &Storage{
		seen:            make(map[string]time.Time),
		now:             time.Now,
		cleanupInterval: DefaultCleanupInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Remember implements webhook.ReplayGuard. It returns true the first time key
// is seen within ttl.
func (s *Storage) Remember(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.calls++
	if s.calls%s.cleanupInterval == 0 {
		s.sweep(now)
	}

	if expiry, ok := s.seen[key]; ok && now.Before(expiry) {
		return false, nil
	}
	s.seen[key] = now.Add(ttl)
	return true, nil
}

// Forget implements webhook.ReplayGuard.
func (s *Storage) Forget(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.seen, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of keys currently held, including expired keys not
// yet swept.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func (s *Storage) sweep(now time.Time) {
	for key, expiry := range s.seen {
		if !now.Before(expiry) {
			delete(s.seen, key)
		}
	}
}
