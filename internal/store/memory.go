package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process BlobStore for tests and throwaway sessions.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	// Callers may keep the slice; hand out a copy.
	return append([]byte(nil), data...), nil
}

func (m *Memory) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Close() error {
	return nil
}

var (
	_ BlobStore = (*Memory)(nil)
	_ BlobStore = (*SQLite)(nil)
	_ BlobStore = (*Postgres)(nil)
)
