package contact

import (
	"context"
	"sync"
	"time"
)

// Store persists submissions and returns the stored copy with its id and timestamp.
type Store interface {
	Insert(ctx context.Context, s Submission) (Submission, error)
}

// MemoryStore implements Store with an in-memory slice, suitable for local runs.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	items  []Submission
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Insert assigns the next id and the current time, then appends the record.
func (s *MemoryStore) Insert(_ context.Context, sub Submission) (Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub.ID = s.nextID
	s.nextID++
	sub.CreatedAt = time.Now().UTC()
	if sub.Phone != nil {
		phone := *sub.Phone
		sub.Phone = &phone
	}

	s.items = append(s.items, sub)
	return sub, nil
}

// List returns stored submissions in insertion order.
func (s *MemoryStore) List() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Submission(nil), s.items...)
}
