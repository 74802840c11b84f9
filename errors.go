package client

import (
	"errors"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
	"github.com/d-nishikido/organization-survey-tool/client/internal/querycache"
)

// Error is the normalized failure returned by every server call.
type Error = apierr.Error

// ErrorCode is the taxonomy of Error.
type ErrorCode = apierr.Code

// Error codes.
const (
	CodeNetwork      = apierr.CodeNetwork
	CodeTimeout      = apierr.CodeTimeout
	CodeUnauthorized = apierr.CodeUnauthorized
	CodeForbidden    = apierr.CodeForbidden
	CodeNotFound     = apierr.CodeNotFound
	CodeValidation   = apierr.CodeValidation
	CodeServer       = apierr.CodeServer
	CodeUnknown      = apierr.CodeUnknown
)

// ErrBackPressure is returned when the client's mutation queue is full.
var ErrBackPressure = errors.New("back-pressure (queue full)")

// ErrClosed is returned for mutations submitted after Close.
var ErrClosed = errors.New("client closed")

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// AsError returns the *Error in err's chain.
func AsError(err error) (*Error, bool) { return apierr.As(err) }

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code ErrorCode) bool { return apierr.IsCode(err, code) }

// IsRetryable reports whether err is a network, timeout or server failure.
func IsRetryable(err error) bool { return apierr.IsRetryable(err) }

// UserMessage returns the localized sentence for err.
func UserMessage(err error, locale string) string { return apierr.UserMessage(err, locale) }

// FormatValidationErrors flattens a validation `errors` object into
// "field: message" lines.
func FormatValidationErrors(v any) []string { return apierr.FormatValidationErrors(v) }

// normalize maps anything a store produced onto the client's error surface.
func normalize(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrClosed), errors.Is(err, ErrBackPressure):
		return err
	}
	if _, ok := apierr.As(err); ok {
		return err
	}
	if errors.Is(err, querycache.ErrSuperseded) || errors.Is(err, querycache.ErrUnknownView) {
		return apierr.New(apierr.CodeUnknown, apierr.MsgUnknown, 0).WithCause(err)
	}
	return apierr.Normalize(err)
}
