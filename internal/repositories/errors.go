package repositories

import (
	"context"
	"errors"
	"fmt"
)

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrInvalidID is returned when an invalid ID is provided
	ErrInvalidID = errors.New("invalid ID")

	// ErrStorage is returned when the storage medium is unavailable or rejects a write
	ErrStorage = errors.New("storage error")

	// ErrTimeout is returned when a store operation exceeds its deadline
	ErrTimeout = errors.New("operation timeout")
)

// RepositoryError represents a repository-specific error with additional context
type RepositoryError struct {
	Op         string // Operation that failed
	Collection string // Collection name
	ID         int64  // Record ID (if applicable)
	Err        error  // Error kind (one of the sentinels above)
	Cause      error  // Underlying driver error
	Message    string // Human-readable message
}

// Error implements the error interface
func (e *RepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	detail := e.Err
	if e.Cause != nil {
		detail = e.Cause
	}

	if e.ID != 0 {
		return fmt.Sprintf("%s %s operation failed for ID %d: %v", e.Collection, e.Op, e.ID, detail)
	}

	return fmt.Sprintf("%s %s operation failed: %v", e.Collection, e.Op, detail)
}

// Unwrap exposes both the error kind and the underlying cause
func (e *RepositoryError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewRepositoryError wraps a driver error as a storage error. Context
// deadline and cancellation are reported as timeouts.
func NewRepositoryError(op, collection string, id int64, cause error) *RepositoryError {
	kind := ErrStorage
	if errors.Is(cause, context.DeadlineExceeded) || errors.Is(cause, context.Canceled) {
		kind = ErrTimeout
	}
	return &RepositoryError{
		Op:         op,
		Collection: collection,
		ID:         id,
		Err:        kind,
		Cause:      cause,
	}
}

// NotFoundError creates a "not found" repository error
func NotFoundError(collection string, id int64) *RepositoryError {
	return &RepositoryError{
		Op:         "get",
		Collection: collection,
		ID:         id,
		Err:        ErrNotFound,
		Message:    fmt.Sprintf("%s with ID %d not found", collection, id),
	}
}

// InvalidIDError creates an "invalid ID" repository error
func InvalidIDError(op, collection string, id int64) *RepositoryError {
	return &RepositoryError{
		Op:         op,
		Collection: collection,
		ID:         id,
		Err:        ErrInvalidID,
		Message:    fmt.Sprintf("%s %s requires a positive ID, got %d", collection, op, id),
	}
}

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidID checks if an error is an "invalid ID" error
func IsInvalidID(err error) bool {
	return errors.Is(err, ErrInvalidID)
}

// IsStorage checks if an error is a storage error, timeouts included
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage) || errors.Is(err, ErrTimeout)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
