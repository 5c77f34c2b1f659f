package mirror

import (
	"context"
	"sync"
)

// Write records one Set call on a MemoryStore.
type Write struct {
	Key   string
	Value string
}

// MemoryStore is an in-process Store. It records every write and can be
// made to fail, which makes it the store of choice in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	writes []Write

	// Error injection
	GetErr    error
	SetErr    error
	DeleteErr error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.GetErr != nil {
		return "", false, s.GetErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if s.SetErr != nil {
		return s.SetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.writes = append(s.writes, Write{Key: key, Value: value})
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Writes returns the successful Set calls in order.
func (s *MemoryStore) Writes() []Write {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Write, len(s.writes))
	copy(out, s.writes)
	return out
}

// WritesTo returns the successful Set calls for one key in order.
func (s *MemoryStore) WritesTo(key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, w := range s.writes {
		if w.Key == key {
			out = append(out, w.Value)
		}
	}
	return out
}
