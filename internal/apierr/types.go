// Package apierr defines the normalized error taxonomy produced at the HTTP
// boundary. Every layer above the client (retry, cache, callers) consumes
// *Error values only.
package apierr

import (
	"errors"
	"fmt"
	"time"
)

// Code is the flat, machine-readable error kind.
type Code string

const (
	CodeNetwork      Code = "NETWORK_ERROR"
	CodeTimeout      Code = "TIMEOUT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeServer       Code = "SERVER_ERROR"
	CodeUnknown      Code = "UNKNOWN_ERROR"
)

// Codes lists the whole taxonomy in declaration order.
var Codes = []Code{
	CodeNetwork,
	CodeTimeout,
	CodeUnauthorized,
	CodeForbidden,
	CodeNotFound,
	CodeValidation,
	CodeServer,
	CodeUnknown,
}

// Valid reports whether c belongs to the taxonomy.
func (c Code) Valid() bool {
	for _, k := range Codes {
		if k == c {
			return true
		}
	}
	return false
}

// Retryable reports whether failures of this kind may succeed on a later
// attempt.
func (c Code) Retryable() bool {
	switch c {
	case CodeNetwork, CodeTimeout, CodeServer:
		return true
	default:
		return false
	}
}

// DefaultStatus is used when a failure carries no HTTP status.
const DefaultStatus = 500

// TimestampFormat is ISO-8601 with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// now is swapped in tests.
var now = time.Now

// Error is the canonical failure representation.
type Error struct {
	Code       Code           `json:"code"`
	Message    string         `json:"message"`
	StatusCode int            `json:"statusCode"`
	Details    map[string]any `json:"details,omitempty"`
	Timestamp  string         `json:"timestamp"`

	cause error
}

// New creates an Error stamped with the current time. A non-positive status
// becomes DefaultStatus.
func New(code Code, message string, status int) *Error {
	if status <= 0 {
		status = DefaultStatus
	}
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: status,
		Timestamp:  now().UTC().Format(TimestampFormat),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Unwrap exposes the transport cause for logging. Callers must not branch on it.
func (e *Error) Unwrap() error { return e.cause }

// Retryable reports whether the error's kind is in the retryable set.
func (e *Error) Retryable() bool { return e != nil && e.Code.Retryable() }

// WithCause attaches the raw failure and returns e.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// WithDetails attaches field-level details and returns e.
func (e *Error) WithDetails(d map[string]any) *Error {
	if len(d) > 0 {
		e.Details = d
	}
	return e
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err normalizes to the given code.
func IsCode(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

// IsRetryable reports whether err is a normalized error of a retryable kind.
// Anything that is not an *Error is treated as terminal.
func IsRetryable(err error) bool {
	e, ok := As(err)
	return ok && e.Retryable()
}
