package storage

import (
	"errors"
	"fmt"
)

// Common storage error types
var (
	ErrFileNotFound       = errors.New("file not found")
	ErrFileAlreadyExists  = errors.New("file already exists")
	ErrInvalidKey         = errors.New("invalid storage key")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// StorageError represents a storage operation error with additional context
type StorageError struct {
	Op        string // Operation that failed (e.g., "Store", "Retrieve")
	Key       string
	Err       error
	Retryable bool
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s failed for key '%s': %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError
func NewStorageError(op, key string, err error, retryable bool) *StorageError {
	return &StorageError{
		Op:        op,
		Key:       key,
		Err:       err,
		Retryable: retryable,
	}
}

// IsNotFound returns true if the error indicates a file was not found
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFileNotFound)
}

// IsAlreadyExists returns true if the error indicates a file already exists
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrFileAlreadyExists)
}

// IsInvalidKey returns true if the key was rejected
func IsInvalidKey(err error) bool {
	return errors.Is(err, ErrInvalidKey)
}

// IsRetryable returns true if the error indicates a retryable condition
func IsRetryable(err error) bool {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return storageErr.Retryable
	}
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrTimeout)
}
