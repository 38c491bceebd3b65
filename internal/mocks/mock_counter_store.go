package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/you/fintrack/domain"
)

// MockCounterStore implements domain.CounterStore with an in-memory count
// per key that never expires
type MockCounterStore struct {
	HitFunc func(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

	mu     sync.Mutex
	counts map[string]int64
}

// NewMockCounterStore creates a new MockCounterStore
func NewMockCounterStore() *MockCounterStore {
	return &MockCounterStore{counts: map[string]int64{}}
}

func (m *MockCounterStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if m.HitFunc != nil {
		return m.HitFunc(ctx, key, window)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], window, nil
}

// Compile-time interface compliance verification
var _ domain.CounterStore = (*MockCounterStore)(nil)
