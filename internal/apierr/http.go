package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
)

// Default messages for kinds whose text is fixed or used as a fallback.
const (
	MsgNetwork      = "Network error. Please check your connection"
	MsgTimeout      = "Request timeout. Please check your connection"
	MsgValidation   = "Validation failed"
	MsgUnauthorized = "Unauthorized. Please log in again"
	MsgForbidden    = "Access forbidden"
	MsgNotFound     = "Resource not found"
	MsgServer       = "Internal server error. Please try again later"
	MsgUnknown      = "An unexpected error occurred"
)

// serverBody is the error envelope the backend sends, when it sends one.
type serverBody struct {
	Message string `json:"message"`
	Errors  any    `json:"errors"`
}

func parseBody(body []byte) serverBody {
	var sb serverBody
	if len(body) == 0 {
		return sb
	}
	// Non-JSON bodies (proxy error pages) are ignored.
	_ = json.Unmarshal(body, &sb)
	sb.Message = strings.TrimSpace(sb.Message)
	return sb
}

// FromResponse maps a completed HTTP exchange with a failing status to an
// Error. Fixed-message kinds never carry server text.
func FromResponse(status int, body []byte) *Error {
	sb := parseBody(body)

	switch status {
	case http.StatusBadRequest:
		msg := sb.Message
		if msg == "" {
			msg = MsgValidation
		}
		details, _ := sb.Errors.(map[string]any)
		return New(CodeValidation, msg, status).WithDetails(details)
	case http.StatusUnauthorized:
		return New(CodeUnauthorized, MsgUnauthorized, status)
	case http.StatusForbidden:
		return New(CodeForbidden, MsgForbidden, status)
	case http.StatusNotFound:
		return New(CodeNotFound, orDefault(sb.Message, MsgNotFound), status)
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return New(CodeServer, MsgServer, status)
	default:
		return New(CodeUnknown, orDefault(sb.Message, MsgUnknown), status)
	}
}

// FromTransport maps a request that produced no response. Deadline and
// cancellation signals become TIMEOUT; everything else is NETWORK_ERROR.
func FromTransport(err error) *Error {
	if isTimeout(err) {
		return New(CodeTimeout, MsgTimeout, 0).WithCause(err)
	}
	return New(CodeNetwork, MsgNetwork, 0).WithCause(err)
}

// Normalize returns err unchanged when it already is an *Error and treats any
// other failure as a transport failure. It never returns nil for a non-nil err.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	return FromTransport(err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
