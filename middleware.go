package client

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
)

// Header names set by the built-in stages.
const (
	HeaderRequestID        = "X-Request-ID"
	HeaderRequestTimestamp = "X-Request-Timestamp"
)

// Middleware wraps a RoundTripper. Stages are applied in list order: the
// first stage sees the request first and the response last.
type Middleware func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain wraps base with stages so that stages[0] is outermost. A nil base
// means http.DefaultTransport.
func Chain(base http.RoundTripper, stages ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	rt := base
	for i := len(stages) - 1; i >= 0; i-- {
		if stages[i] != nil {
			rt = stages[i](rt)
		}
	}
	return rt
}

// CredentialsMiddleware attaches the bearer token from p, when there is one,
// and the time the request was issued.
func CredentialsMiddleware(p CredentialProvider) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			// Clone the request to avoid modifying the original
			cloned := req.Clone(req.Context())
			if tok, ok := p.Token(); ok {
				cloned.Header.Set("Authorization", "Bearer "+tok)
			}
			cloned.Header.Set(HeaderRequestTimestamp, time.Now().UTC().Format(apierr.TimestampFormat))
			return next.RoundTrip(cloned)
		})
	}
}

// RequestIDMiddleware tags each request with a fresh X-Request-ID unless the
// caller set one.
func RequestIDMiddleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(HeaderRequestID) != "" {
				return next.RoundTrip(req)
			}
			cloned := req.Clone(req.Context())
			cloned.Header.Set(HeaderRequestID, uuid.NewString())
			return next.RoundTrip(cloned)
		})
	}
}
