package types

import (
	"errors"
	"fmt"
)

// Error categories. Match with errors.Is; extract details with errors.As on
// the structured types below.
var (
	ErrValidation           = errors.New("validation failed")
	ErrUnrecognizedResource = errors.New("unrecognized resource")
	ErrStorageFailure       = errors.New("storage failure")
	ErrInvalidQuery         = errors.New("invalid query options")
	ErrNotFound             = errors.New("decor not found")
)

// Lifecycle errors returned by storage engines.
var (
	ErrAlreadyAttached = errors.New("engine already attached")
	ErrDetached        = errors.New("engine is detached")
	ErrSchemaDowngrade = errors.New("stored schema is newer than this build")
)

// ValidationError reports a caller-supplied value that violates a field
// constraint. It is returned before any write is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UnrecognizedResourceError reports a locator that no route matches, or a
// route that does not support the requested operation.
type UnrecognizedResourceError struct {
	Op      string
	Locator string
}

func (e *UnrecognizedResourceError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("unrecognized resource %q", e.Locator)
	}
	return fmt.Sprintf("%s: unrecognized resource %q", e.Op, e.Locator)
}

// Is matches ErrUnrecognizedResource.
func (e *UnrecognizedResourceError) Is(target error) bool {
	return target == ErrUnrecognizedResource
}

// StorageError wraps a failure of the underlying store. The whole operation
// failed; callers may retry it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage failure: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is matches ErrStorageFailure.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}
