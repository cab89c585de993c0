package store

import (
	"context"
	"sync"
)

// Memory is an in-process KV used by tests and the scenario harness.
// Safe for concurrent use, though the core assumes a single writer.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte

	// FailNextSet, when non-nil, is returned from the next Set call and
	// then cleared. Lets tests exercise the not-committed path.
	FailNextSet error
}

var _ KV = (*Memory)(nil)

// NewMemory creates an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns the value stored under key, or ok=false if absent.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set replaces the value stored under key.
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNextSet != nil {
		err := m.FailNextSet
		m.FailNextSet = nil
		return &IOError{Op: "set", Key: key, Err: err}
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

// Delete removes the value stored under key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}
