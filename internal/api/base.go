package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
)

// BasePath prefixes every backend route. The host part comes from the
// client's base URL (empty behind the reverse proxy).
const BasePath = "/api"

// Call describes one request issued through a Requester.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   any // JSON-encoded when non-nil
	Out    any // JSON decode target; nil discards the body
	Raw    io.Writer
}

// Requester performs calls against the backend. Failures are returned as
// *apierr.Error.
type Requester interface {
	Send(ctx context.Context, call Call) error
}

func path(segments ...string) string {
	var b strings.Builder
	b.WriteString(BasePath)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func get(ctx context.Context, r Requester, p string, q url.Values, out any) error {
	if err := ctx.Err(); err != nil {
		return apierr.FromTransport(err)
	}
	return r.Send(ctx, Call{Method: http.MethodGet, Path: p, Query: q, Out: out})
}

func send(ctx context.Context, r Requester, method, p string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return apierr.FromTransport(err)
	}
	return r.Send(ctx, Call{Method: method, Path: p, Body: body, Out: out})
}
