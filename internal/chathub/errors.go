package chathub

import (
	"errors"
	"fmt"

	"gosip/backend/internal/storage"
)

// NotFoundError reports that a referenced user or room does not exist. The
// operation aborts with no partial effect.
type NotFoundError struct {
	Err error
}

func (e *NotFoundError) Error() string { return e.Err.Error() }
func (e *NotFoundError) Unwrap() error { return e.Err }

// ValidationError reports a malformed payload, such as a missing identity.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// PersistenceError reports a failed storage operation on the primary write
// path. Failures on fan-out steps after the primary write are logged instead.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// wrapStorage classifies a storage error as not-found or persistence failure.
func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Err: err}
	}
	return &PersistenceError{Op: op, Err: err}
}
