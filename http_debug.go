package client

import (
	"net/http"
	"net/http/httputil"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DebugMiddleware logs each request's method, URL, status and duration at
// debug level. At trace level the full request and response are dumped,
// which includes the Authorization header; never enable trace logging
// against production.
//
// The client installs it when debug logging is requested and the
// environment is not production:
//
//	export SURVEY_DEBUG=true
//	surveyctl categories list
func DebugMiddleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return &debugTransport{base: next}
	}
}

type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	trace := log.Logger.GetLevel() <= zerolog.TraceLevel && zerolog.GlobalLevel() <= zerolog.TraceLevel
	if trace {
		if reqDump, err := httputil.DumpRequestOut(req, true); err == nil {
			log.Trace().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
		}
	}

	start := time.Now()
	resp, err := dt.base.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		log.Debug().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Dur("duration", elapsed).Msg("HTTP request failed")
		return nil, err
	}

	log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Dur("duration", elapsed).Msg("HTTP response")
	if trace {
		if respDump, err := httputil.DumpResponse(resp, true); err == nil {
			log.Trace().Str("method", req.Method).Str("url", req.URL.String()).Str("response_dump", string(respDump)).Msg("HTTP response body")
		}
	}
	return resp, nil
}

// debugLoggingRequested reports whether SURVEY_DEBUG=true or DEBUG=true is
// set (case-sensitive).
func debugLoggingRequested() bool {
	return os.Getenv("SURVEY_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
