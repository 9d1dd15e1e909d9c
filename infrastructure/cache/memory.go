package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// MemoryStore is an in-memory Store implementation with periodic cleanup.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewMemoryStore creates an in-memory store and starts its cleanup loop.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries:     make(map[string]memoryEntry),
		stopCleanup: make(chan struct{}),
	}
	go s.cleanup(time.Minute)
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || entry.expired() {
		return nil, ErrMiss
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: stored, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close stops the cleanup loop.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

func (s *MemoryStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, entry := range s.entries {
				if entry.expired() {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCleanup:
			return
		}
	}
}
