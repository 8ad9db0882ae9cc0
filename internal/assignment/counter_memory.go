package assignment

import (
	"context"
	"fmt"
	"sync"

	"bmmhub/pkg/platform/sentinel"
)

// InMemoryCounterStore guards counts with a single mutex; intended for
// tests and single-process deployments.
type InMemoryCounterStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewInMemoryCounterStore() *InMemoryCounterStore {
	return &InMemoryCounterStore{counts: make(map[string]int)}
}

func (s *InMemoryCounterStore) Reserve(_ context.Context, venueName string, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[venueName] >= capacity {
		return fmt.Errorf("reserve %s: %w", venueName, sentinel.ErrCapacityFull)
	}
	s.counts[venueName]++
	return nil
}

func (s *InMemoryCounterStore) Release(_ context.Context, venueName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[venueName] > 0 {
		s.counts[venueName]--
	}
	return nil
}

func (s *InMemoryCounterStore) Count(_ context.Context, venueName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[venueName], nil
}
