package storage

import (
	"context"
	"sync"
)

// MemoryAdapter is an in-process CounterRepository with the same semantics
// as the Redis adapter. Used by tests and as a store-less fallback.
type MemoryAdapter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{counts: make(map[string]int64)}
}

func (m *MemoryAdapter) GetCount(_ context.Context, key string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.counts[key]
	return v, ok, nil
}

func (m *MemoryAdapter) SetCount(_ context.Context, key string, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key] = value
	return nil
}

func (m *MemoryAdapter) IncrementIfBelow(_ context.Context, key string, limit int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts[key] >= limit {
		return false, nil
	}
	m.counts[key]++
	return true, nil
}
