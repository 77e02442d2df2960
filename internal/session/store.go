// Package session keeps short-lived per-visitor state, currently the captcha
// answer, behind a signed cookie.
package session

import (
	"context"
	"sync"
	"time"
)

// Store holds string values per session id. Writing any value renews the
// whole session's expiry.
type Store interface {
	Get(ctx context.Context, id, key string) (string, bool, error)
	Set(ctx context.Context, id, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, id, key string) error
}

type memoryEntry struct {
	values    map[string]string
	expiresAt time.Time
}

// MemoryStore implements Store in process memory. Expired sessions are
// invisible to Get and removed by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[id]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(ent.expiresAt) {
		delete(s.entries, id)
		return "", false, nil
	}
	v, ok := ent.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, id, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ent, ok := s.entries[id]
	if !ok || !now.Before(ent.expiresAt) {
		ent = &memoryEntry{values: make(map[string]string)}
		s.entries[id] = ent
	}
	ent.values[key] = value
	ent.expiresAt = now.Add(ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[id]; ok {
		delete(ent.values, key)
	}
	return nil
}

// Sweep drops expired sessions.
func (s *MemoryStore) Sweep() {
	now := s.now()

	s.mu.Lock()
	for id, ent := range s.entries {
		if !now.Before(ent.expiresAt) {
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()
}

// Run sweeps every interval until ctx is cancelled.
func (s *MemoryStore) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len reports the number of tracked sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
