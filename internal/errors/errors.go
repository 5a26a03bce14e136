package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the structured error type for rxmcp.
// It provides context for error handling, logging, and user presentation.
type Error struct {
	// Code is the unique error code (e.g., "ERR_301_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Store, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with Error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an Error from an existing error.
// The error's message becomes the Error message.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotFound creates a lookup-miss error for the given kind and key.
// Lookup misses are expected outcomes, callers should treat them as a
// normal branch.
func NotFound(kind, key string) *Error {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found: %s", kind, key), nil).
		WithDetail("kind", kind).
		WithDetail("key", key)
}

// EmptyCorpus creates the error returned when a rebuild produced zero pages.
// The previous index generation remains serving.
func EmptyCorpus(root string) *Error {
	return New(ErrCodeEmptyCorpus, "indexing produced zero pages", nil).
		WithDetail("source_root", root)
}

// DuplicateKey creates a strict-mode collision error for a slug or
// component name seen more than once during a rebuild.
func DuplicateKey(kind, key string) *Error {
	return New(ErrCodeDuplicateKey, fmt.Sprintf("duplicate %s: %s", kind, key), nil).
		WithDetail("kind", kind).
		WithDetail("key", key)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *Error {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *Error {
	return New(ErrCodeFileNotFound, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *Error {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *Error {
	return New(ErrCodeInternal, message, cause)
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

// IsEmptyCorpus reports whether err is an empty-corpus rebuild failure.
func IsEmptyCorpus(err error) bool {
	return HasCode(err, ErrCodeEmptyCorpus)
}

// IsDuplicateKey reports whether err is a strict-mode duplicate collision.
func IsDuplicateKey(err error) bool {
	return HasCode(err, ErrCodeDuplicateKey)
}

// HasCode reports whether err (or anything it wraps) carries the code.
func HasCode(err error, code string) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an Error.
// Returns empty string if not an Error.
func GetCode(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetCategory extracts the category from an Error.
// Returns empty string if not an Error.
func GetCategory(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category
	}
	return ""
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Severity == SeverityFatal
	}
	return false
}
