// Package apperror defines the stable error codes returned by the API and
// their mapping onto platform status strings and HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, client-visible error code
type Code string

const (
	// Authentication
	CodeUnauthenticated  Code = "AUTH_UNAUTHENTICATED"
	CodePermissionDenied Code = "AUTH_PERMISSION_DENIED"

	// Validation
	CodeInvalidInput Code = "VALIDATION_INVALID_INPUT"
	CodeMissingField Code = "VALIDATION_MISSING_FIELD"
	CodeOutOfRange   Code = "VALIDATION_OUT_OF_RANGE"
	CodeDuplicate    Code = "VALIDATION_DUPLICATE"
	CodeNotFound     Code = "DATA_NOT_FOUND"

	// Business
	CodeInsufficientStock Code = "BIZ_INSUFFICIENT_STOCK"
	CodeInvalidOperation  Code = "BIZ_INVALID_OPERATION"
	CodeRuleViolation     Code = "BIZ_RULE_VIOLATION"

	// System
	CodeInternal      Code = "SYS_INTERNAL_ERROR"
	CodeUnavailable   Code = "SYS_UNAVAILABLE"
	CodeTimeout       Code = "SYS_TIMEOUT"
	CodeDatabaseError Code = "SYS_DATABASE_ERROR"
	CodeRateLimited   Code = "SYS_RATE_LIMITED"

	// File
	CodeFileTooLarge       Code = "FILE_TOO_LARGE"
	CodeFileUnsupportedExt Code = "FILE_UNSUPPORTED_TYPE"
	CodeFileCorrupted      Code = "FILE_CORRUPTED"
)

type mapping struct {
	platform string
	http     int
}

var mappings = map[Code]mapping{
	CodeUnauthenticated:    {"unauthenticated", http.StatusUnauthorized},
	CodePermissionDenied:   {"permission-denied", http.StatusForbidden},
	CodeInvalidInput:       {"invalid-argument", http.StatusBadRequest},
	CodeMissingField:       {"invalid-argument", http.StatusBadRequest},
	CodeOutOfRange:         {"out-of-range", http.StatusBadRequest},
	CodeDuplicate:          {"already-exists", http.StatusConflict},
	CodeNotFound:           {"not-found", http.StatusNotFound},
	CodeInsufficientStock:  {"failed-precondition", http.StatusUnprocessableEntity},
	CodeInvalidOperation:   {"failed-precondition", http.StatusUnprocessableEntity},
	CodeRuleViolation:      {"failed-precondition", http.StatusUnprocessableEntity},
	CodeInternal:           {"internal", http.StatusInternalServerError},
	CodeUnavailable:        {"unavailable", http.StatusServiceUnavailable},
	CodeTimeout:            {"deadline-exceeded", http.StatusGatewayTimeout},
	CodeDatabaseError:      {"internal", http.StatusInternalServerError},
	CodeRateLimited:        {"resource-exhausted", http.StatusTooManyRequests},
	CodeFileTooLarge:       {"invalid-argument", http.StatusRequestEntityTooLarge},
	CodeFileUnsupportedExt: {"invalid-argument", http.StatusUnsupportedMediaType},
	CodeFileCorrupted:      {"invalid-argument", http.StatusBadRequest},
}

// PlatformStatus returns the RPC-level status name for the code
func (c Code) PlatformStatus() string {
	if m, ok := mappings[c]; ok {
		return m.platform
	}
	return "internal"
}

// HTTPStatus returns the HTTP status code used when serializing the code
func (c Code) HTTPStatus() int {
	if m, ok := mappings[c]; ok {
		return m.http
	}
	return http.StatusInternalServerError
}

// Error is a deliberate, user-facing failure
type Error struct {
	Code    Code
	Message string
	Details any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails returns a copy of the error carrying details
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// New creates an error with a code and message
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error with a code that keeps the underlying cause
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// InvalidInput is shorthand for a VALIDATION_INVALID_INPUT error
func InvalidInput(format string, args ...any) *Error {
	return New(CodeInvalidInput, format, args...)
}

// NotFound is shorthand for a DATA_NOT_FOUND error
func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

// Database wraps a persistence failure
func Database(err error, operation string) *Error {
	return Wrap(CodeDatabaseError, err, "database error during %s", operation)
}

// As extracts an *Error from err
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code
func HasCode(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
