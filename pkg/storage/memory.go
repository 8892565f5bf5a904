package storage

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps objects in process memory. Used when no bucket is
// configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

type Object struct {
	ContentType string
	Data        []byte
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

func (m *MemoryStore) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	stored := make([]byte, len(data))
	copy(stored, data)

	m.mu.Lock()
	m.objects[key] = Object{ContentType: contentType, Data: stored}
	m.mu.Unlock()
	return m.baseURL + "/" + escapeKey(key), nil
}

func (m *MemoryStore) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}
