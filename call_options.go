package client

import (
	"io"
	"net/http"
	"net/url"
)

type callConfig struct {
	header http.Header
	query  url.Values
	raw    io.Writer
}

// CallOption customizes a single verb call.
type CallOption func(*callConfig)

// WithHeader sets a request header for one call.
func WithHeader(key, value string) CallOption {
	return func(c *callConfig) { c.header.Set(key, value) }
}

// WithQuery adds a query parameter for one call.
func WithQuery(key, value string) CallOption {
	return func(c *callConfig) { c.query.Add(key, value) }
}

// WithRawResponse copies a successful response body to w instead of
// decoding JSON. Use it for CSV exports.
func WithRawResponse(w io.Writer) CallOption {
	return func(c *callConfig) { c.raw = w }
}
