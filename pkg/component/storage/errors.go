package storage

import (
	"errors"
	"fmt"
)

// Common storage error types. These can be used directly or wrapped with
// additional context using WithMessage or WithCause.
var (
	// ErrNotConnected indicates that the storage client is not connected
	// to the backend.
	ErrNotConnected = &StorageError{
		Code:    "NOT_CONNECTED",
		Message: "storage client is not connected",
	}

	// ErrConnectionFailed indicates that an attempt to connect to the
	// storage backend failed.
	ErrConnectionFailed = &StorageError{
		Code:    "CONNECTION_FAILED",
		Message: "failed to connect to storage backend",
	}

	// ErrInvalidConfig indicates that the storage configuration is invalid.
	ErrInvalidConfig = &StorageError{
		Code:    "INVALID_CONFIG",
		Message: "invalid storage configuration",
	}

	// ErrClientNotFound indicates that a requested client was not found
	// in the storage manager.
	ErrClientNotFound = &StorageError{
		Code:    "CLIENT_NOT_FOUND",
		Message: "storage client not found",
	}
)

// StorageError is a structured error with a stable machine-readable code.
type StorageError struct {
	// Code is a stable identifier for the error kind.
	Code string

	// Message is a human-readable description.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so wrapped copies still compare equal to the
// package-level sentinels.
func (e *StorageError) Is(target error) bool {
	var t *StorageError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithMessage returns a copy of the error with a more specific message.
func (e *StorageError) WithMessage(message string) *StorageError {
	return &StorageError{Code: e.Code, Message: message, Cause: e.Cause}
}

// WithCause returns a copy of the error carrying the underlying cause.
func (e *StorageError) WithCause(cause error) *StorageError {
	return &StorageError{Code: e.Code, Message: e.Message, Cause: cause}
}
