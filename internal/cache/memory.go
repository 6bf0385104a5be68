package cache

import (
	"context"
	"sync"
	"time"
)

const janitorInterval = time.Minute

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore is an in-process cache used when no Redis URL is configured.
// Expiry is checked lazily on read and swept periodically by a janitor
// goroutine.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	unmatched map[string]struct{}
	stop      chan struct{}
	stopOnce  sync.Once
}

// Compile-time interface compliance check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory cache store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries:   make(map[string]memoryEntry),
		unmatched: make(map[string]struct{}),
		stop:      make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Get returns the cached payload for a key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.payload, true, nil
}

// Set stores a payload with the given TTL.
func (s *MemoryStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	copied := make([]byte, len(payload))
	copy(copied, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{
		payload:   copied,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// TrackUnmatched adds the key to the unmatched set.
func (s *MemoryStore) TrackUnmatched(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unmatched[key] = struct{}{}
	return nil
}

// InvalidateUnmatched deletes every tracked unmatched entry and clears the set.
func (s *MemoryStore) InvalidateUnmatched(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.unmatched)
	for key := range s.unmatched {
		delete(s.entries, key)
	}
	s.unmatched = make(map[string]struct{})
	return removed, nil
}

// Close stops the janitor goroutine.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}
