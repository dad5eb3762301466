package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict reports concurrent writers colliding on the same
	// namespace at the transaction layer.
	ErrConflict = errors.New("concurrent write conflict")

	// ErrCorruptCache reports stored data that failed domain
	// reconstruction on load.
	ErrCorruptCache = errors.New("corrupt cache")
)

// ConflictError wraps the storage engine's locking failure for one
// namespace. Retry policy belongs to the caller.
type ConflictError struct {
	GraphType string
	Cause     error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent write conflict on namespace %q: %v", e.GraphType, e.Cause)
}

func (e *ConflictError) Unwrap() error {
	return e.Cause
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// CorruptCacheError reports a namespace whose stored rows violate the
// domain model's invariants. The namespace is preserved for inspection;
// the repository never auto-repairs or deletes corrupt data.
type CorruptCacheError struct {
	GraphType string
	Cause     error
}

func (e *CorruptCacheError) Error() string {
	return fmt.Sprintf("corrupt cache for namespace %q: %v", e.GraphType, e.Cause)
}

func (e *CorruptCacheError) Unwrap() error {
	return e.Cause
}

func (e *CorruptCacheError) Is(target error) bool {
	return target == ErrCorruptCache
}

// RepositoryError is an opaque storage-layer failure (disk I/O, lock
// timeout) with the underlying cause attached. It is never retried
// internally.
type RepositoryError struct {
	Op        string // the failing operation, e.g. "save", "load"
	GraphType string // empty for namespace-independent operations
	Cause     error
}

func (e *RepositoryError) Error() string {
	if e.GraphType != "" {
		return fmt.Sprintf("graph cache %s %q: %v", e.Op, e.GraphType, e.Cause)
	}
	return fmt.Sprintf("graph cache %s: %v", e.Op, e.Cause)
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}
