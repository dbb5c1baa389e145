package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter  = errors.New("invalid parameter value")
	ErrDuplicateSession  = errors.New("session already exists")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidEvent      = errors.New("invalid event")
	ErrRecordingNotFound = errors.New("recording not found")
)

// StorageError marks a persistence-layer failure. It is local and
// non-fatal: callers report it, nothing terminates.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
