package storage

import (
	"context"
	"time"
)

// FileInfo describes a stored file
type FileInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// StoreOptions provides options for storing files
type StoreOptions struct {
	Overwrite bool `json:"overwrite,omitempty"`
}

// FileStorage keeps backup documents by key
type FileStorage interface {
	// Store saves data under key. Without opts.Overwrite an existing key is
	// rejected with ErrFileAlreadyExists.
	Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error

	// Retrieve gets a file by its storage key
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes a file by its storage key
	Delete(ctx context.Context, key string) error

	// Exists checks if a file exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// List returns the files whose key starts with prefix, sorted by key
	List(ctx context.Context, prefix string) ([]FileInfo, error)

	Close() error
}

// StorageConfig represents configuration for storage providers
type StorageConfig struct {
	Type     string `json:"type" mapstructure:"type"`           // "local" or "memory"
	BasePath string `json:"base_path" mapstructure:"base_path"` // For local storage
}
