// Package snapshot persists the standings snapshot across runs through a
// small key/value store with a per-value size ceiling, mirroring the
// chunked-cookie scheme of the original tracker.
package snapshot

import (
	"context"
	"sync"
	"time"
)

// Store is a small-value key/value store with per-key expiry. Values are
// capped in size by the caller; the store itself only tracks expiry.
type Store interface {
	// Set stores value under key with the given time-to-live.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value stored under key.
	// Returns ErrNotFound when the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore implements Store with an in-process map. State is lost on
// restart, which degrades gracefully to the "no history yet" case.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the store's time source, mainly for expiry tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores value under key with the given time-to-live.
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	if s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return "", ErrNotFound
	}
	return e.value, nil
}
