package memory

import (
	"context"
	"sync"

	apperrors "github.com/utafrali/marketplace-discovery/pkg/errors"
)

// KV is an in-memory key-value store. Safe for concurrent use.
type KV struct {
	mu   sync.RWMutex
	data map[string]string
}

// New creates an empty in-memory store.
func New() *KV {
	return &KV{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *KV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return "", apperrors.NotFound("key", key)
	}
	return v, nil
}

// Set stores value under key, replacing any previous value.
func (m *KV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

// Len returns the number of stored keys.
func (m *KV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
