package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFileStorage is an in-memory FileStorage, used for tests and for
// running without a backup directory
type MemoryFileStorage struct {
	mu    sync.RWMutex
	files map[string]*memoryFile
}

type memoryFile struct {
	data         []byte
	lastModified time.Time
}

// NewMemoryFileStorage creates an empty MemoryFileStorage
func NewMemoryFileStorage() *MemoryFileStorage {
	return &MemoryFileStorage{
		files: make(map[string]*memoryFile),
	}
}

// Store implements FileStorage.Store
func (m *MemoryFileStorage) Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Store", key, err, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if opts == nil || !opts.Overwrite {
		if _, exists := m.files[key]; exists {
			return NewStorageError("Store", key, ErrFileAlreadyExists, false)
		}
	}

	m.files[key] = &memoryFile{
		data:         append([]byte(nil), data...),
		lastModified: time.Now(),
	}
	return nil
}

// Retrieve implements FileStorage.Retrieve
func (m *MemoryFileStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Retrieve", key, err, false)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	file, exists := m.files[key]
	if !exists {
		return nil, NewStorageError("Retrieve", key, ErrFileNotFound, false)
	}
	return append([]byte(nil), file.data...), nil
}

// Delete implements FileStorage.Delete
func (m *MemoryFileStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Delete", key, err, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[key]; !exists {
		return NewStorageError("Delete", key, ErrFileNotFound, false)
	}
	delete(m.files, key)
	return nil
}

// Exists implements FileStorage.Exists
func (m *MemoryFileStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, NewStorageError("Exists", key, err, false)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.files[key]
	return exists, nil
}

// List implements FileStorage.List
func (m *MemoryFileStorage) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.files))
	for key, file := range m.files {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		files = append(files, FileInfo{
			Key:          key,
			Size:         int64(len(file.data)),
			LastModified: file.lastModified,
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files, nil
}

// Close implements FileStorage.Close
func (m *MemoryFileStorage) Close() error {
	return nil
}

// Len returns the number of stored files
func (m *MemoryFileStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
