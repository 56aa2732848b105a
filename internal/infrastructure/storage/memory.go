package storage

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// MemoryExportStorage keeps exports in process memory. It is used when no
// bucket is configured and in tests.
type MemoryExportStorage struct {
	// BaseURL prefixes generated download URLs
	BaseURL string
	prefix  string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryExportStorage creates an empty storage
func NewMemoryExportStorage(prefix string) *MemoryExportStorage {
	return &MemoryExportStorage{
		BaseURL: "memory://exports",
		prefix:  prefix,
		objects: map[string][]byte{},
	}
}

// Upload stores a copy of data and returns its key
func (m *MemoryExportStorage) Upload(_ context.Context, name string, data []byte, _ string) (string, error) {
	if name == "" {
		return "", errors.New("file name is required")
	}
	key := objectKey(m.prefix, name)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = slices.Clone(data)
	return key, nil
}

// DownloadURL returns a non-signed URL for the key
func (m *MemoryExportStorage) DownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", time.Time{}, errors.New("object not found")
	}
	if expiresIn <= 0 {
		expiresIn = DefaultPresignExpiration
	}
	return m.BaseURL + "/" + key, time.Now().Add(expiresIn), nil
}

// Object returns a stored object
func (m *MemoryExportStorage) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return slices.Clone(data), ok
}
