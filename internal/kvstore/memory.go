package kvstore

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewInMemoryStore returns a volatile Store. Used by tests and as the
// CLI fallback when no durable path is configured.
func NewInMemoryStore() Store {
	return &memoryStore{m: map[string]string{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
