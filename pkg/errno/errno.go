// Package errno provides the structured error code system for ProxyScope.
//
// Error Code Format: AABBCCC (7 digits)
//
//	AA  (00-99): Service/Module code - identifies the source service
//	BB  (00-99): Category code - identifies the error category
//	CCC (000-999): Sequence number - specific error within the category
//
// Service Codes (AA):
//
//	00: Common/Base errors (shared by all services)
//	04: API service
//	05: Worker service
//	10: Database infrastructure
//	90: EDGAR (third-party)
//	91: LLM providers (third-party)
//
// Category Codes (BB):
//
//	00: Success
//	01: Request/Validation errors (400)
//	04: Resource not found errors (404)
//	05: Conflict errors (409)
//	06: Rate limiting errors (429)
//	07: Internal errors (500)
//	08: Database errors (500)
//	10: Network errors (502/503)
//	11: Timeout errors (504)
//	12: Configuration errors (500)
//
// Usage:
//
//	// Using predefined errors
//	return errno.ErrInvalidParam.WithMessage("cik is required")
//
//	// Wrapping underlying errors
//	return errno.ErrDatabase.WithCause(err)
package errno

import (
	"errors"
	"fmt"
	"sync"
)

// Errno represents a structured error with code and messages.
type Errno struct {
	// Code is the unique error code.
	Code int `json:"code"`

	// HTTP is the HTTP status code to return.
	HTTP int `json:"-"`

	// MessageEN is the English error message.
	MessageEN string `json:"message"`

	// MessageZH is the Chinese error message.
	MessageZH string `json:"message_zh,omitempty"`

	// cause is the underlying error.
	cause error
}

// Error implements the error interface.
func (e *Errno) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("errno %d: %s: %v", e.Code, e.MessageEN, e.cause)
	}
	return fmt.Sprintf("errno %d: %s", e.Code, e.MessageEN)
}

// Unwrap returns the underlying cause.
func (e *Errno) Unwrap() error {
	return e.cause
}

// Is reports whether target carries the same error code. This lets wrapped
// copies created by WithMessage/WithCause still match their registered base
// via errors.Is.
func (e *Errno) Is(target error) bool {
	var t *Errno
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause returns a copy of the Errno carrying the given cause.
func (e *Errno) WithCause(cause error) *Errno {
	clone := *e
	clone.cause = cause
	return &clone
}

// WithMessage returns a copy of the Errno with an overridden English message.
func (e *Errno) WithMessage(format string, args ...interface{}) *Errno {
	clone := *e
	clone.MessageEN = fmt.Sprintf(format, args...)
	return &clone
}

// MakeCode builds an error code from service, category and sequence parts.
func MakeCode(service, category, seq int) int {
	return service*100000 + category*1000 + seq
}

// Decode splits an error code into service, category and sequence parts.
func Decode(code int) (service, category, seq int) {
	return code / 100000, (code / 1000) % 100, code % 1000
}

var (
	registryMu sync.RWMutex
	registry   = make(map[int]*Errno)
)

// Register adds an Errno to the global registry and returns it.
// It panics when the code is already registered, which surfaces copy-paste
// mistakes at init time rather than at request time.
func Register(e *Errno) *Errno {
	registryMu.Lock()
	defer registryMu.Unlock()

	if prev, exists := registry[e.Code]; exists {
		panic(fmt.Sprintf("errno: code %d already registered as %q", e.Code, prev.MessageEN))
	}
	registry[e.Code] = e
	return e
}

// Lookup returns the registered Errno for a code.
func Lookup(code int) (*Errno, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	e, ok := registry[code]
	return e, ok
}

// FromError coerces any error into an *Errno. Unknown errors map to
// ErrInternal with the original error attached as cause.
func FromError(err error) *Errno {
	if err == nil {
		return OK
	}
	var e *Errno
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.WithCause(err)
}
