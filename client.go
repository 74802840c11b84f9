// Package client is the Go SDK for the survey administration backend.
//
// All server calls leave through one Client. Failures surface as *Error
// values carrying a code from a flat taxonomy; retryable reads and writes go
// through a bounded exponential backoff; categories, questions and surveys are
// cached locally and edited optimistically before the server confirms.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/d-nishikido/organization-survey-tool/client/internal/api"
	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
	"github.com/d-nishikido/organization-survey-tool/client/internal/querycache"
	"github.com/d-nishikido/organization-survey-tool/client/internal/retry"
	"github.com/d-nishikido/organization-survey-tool/client/internal/shardqueue"
)

// DefaultTimeout bounds a single HTTP attempt.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 1 << 20

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client is the survey backend SDK. It is safe for concurrent use; call Close
// to stop the mutation executor.
type Client struct {
	baseURL     string
	http        *http.Client
	creds       CredentialProvider
	notifier    *Notifier
	locale      string
	environment string
	debug       bool
	middleware  []Middleware
	exec        Executor

	maxRetries int
	onRetry    func(attempt int, err *Error)
	retryTimer backoff.Timer

	caches     *querycache.Registry
	categories *CategoryStore
	questions  *QuestionStore
	surveys    *SurveyStore

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for baseURL. An empty baseURL sends relative
// /api/* paths, which only works behind a reverse proxy or with a custom
// transport.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: DefaultTimeout},
		creds:       NewMemoryCredentials(""),
		notifier:    NewNotifier(),
		locale:      apierr.DefaultLocale,
		environment: EnvDevelopment,
		maxRetries:  retry.DefaultMaxRetries,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append([]Option{WithDebugLogging(true)}, opts...)
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.exec == nil {
		c.exec = newDefaultExecutor()
	}

	c.installTransport()
	c.initStores()
	return c, nil
}

// installTransport builds the middleware chain. The credential stage runs
// first, then request ids, then caller stages, then the diagnostic stage
// right above the base transport.
func (c *Client) installTransport() {
	chain := []Middleware{CredentialsMiddleware(c.creds), RequestIDMiddleware()}
	chain = append(chain, c.middleware...)
	if c.debug && c.environment != EnvProduction {
		chain = append(chain, DebugMiddleware())
	}
	c.http.Transport = Chain(c.http.Transport, chain...)
}

func (c *Client) initStores() {
	serial := &mutationSerializer{exec: c.exec}
	c.caches = querycache.NewRegistry()
	c.categories = newCategoryStore(c, serial)
	c.questions = newQuestionStore(c, serial)
	c.surveys = newSurveyStore(c, serial)
	for _, inv := range []querycache.Invalidator{c.categories.coll, c.questions.coll, c.surveys.coll} {
		if err := c.caches.Add(inv); err != nil {
			panic(err)
		}
	}
}

// Close stops the background executor. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	return nil
}

// Notifier returns the bus on which every normalized request failure is
// published. Failures raised while a cached read or a mutation is in progress
// are delivered after that call returns, so subscribers may call back into
// the client.
func (c *Client) Notifier() *Notifier { return c.notifier }

// Credentials returns the provider consulted on every request.
func (c *Client) Credentials() CredentialProvider { return c.creds }

// Invalidate marks the named caches ("categories", "questions", "surveys")
// stale. With no names every cache is invalidated.
func (c *Client) Invalidate(names ...string) {
	if len(names) == 0 {
		names = c.caches.Names()
	}
	c.caches.Invalidate(names...)
}

// AwaitMutations blocks until every mutation submitted so far on the named
// collection has settled.
func (c *Client) AwaitMutations(ctx context.Context, collection string) error {
	if err := ctx.Err(); err != nil {
		return apierr.FromTransport(err)
	}
	return mapExecErr(c.exec.Barrier(ctx, collection))
}

// --------------------------------------------------------------------
// Verb operations
// --------------------------------------------------------------------

// Get decodes the JSON body of GET path into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodGet, path, nil, out, opts)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodPost, path, body, out, opts)
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodPut, path, body, out, opts)
}

// Patch sends body as JSON and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodPatch, path, body, out, opts)
}

// Delete issues DELETE path; out may be nil.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodDelete, path, nil, out, opts)
}

func (c *Client) call(ctx context.Context, method, path string, body, out any, opts []CallOption) error {
	cfg := callConfig{header: make(http.Header), query: make(url.Values)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return c.do(ctx, api.Call{Method: method, Path: path, Query: cfg.query, Body: body, Out: out, Raw: cfg.raw}, cfg.header)
}

// Send implements the internal request interface used by service functions.
func (c *Client) Send(ctx context.Context, call api.Call) error {
	return c.do(ctx, call, nil)
}

// do performs one HTTP attempt. Every failure leaves as *Error and a 401
// clears stored credentials. Failures are published on the notifier unless
// the cache cancelled the attempt.
func (c *Client) do(ctx context.Context, call api.Call, header http.Header) error {
	start := time.Now()
	err := c.roundTrip(ctx, call, header)
	code := "ok"
	switch {
	case err != nil && querycache.Superseded(ctx):
		// The cache dropped this fetch; nobody sees the failure.
		code = "superseded"
	case err != nil:
		code = string(err.Code)
	}
	requestsTotal.WithLabelValues(call.Method, code).Inc()
	requestDuration.WithLabelValues(call.Method).Observe(time.Since(start).Seconds())
	if err == nil {
		return nil
	}
	if code == "superseded" {
		return err
	}
	return c.fail(ctx, err)
}

func (c *Client) roundTrip(ctx context.Context, call api.Call, header http.Header) *Error {
	var body io.Reader
	if call.Body != nil {
		b, err := json.Marshal(call.Body)
		if err != nil {
			return apierr.New(apierr.CodeUnknown, "encode request: "+err.Error(), 0).WithCause(err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + call.Path
	if len(call.Query) > 0 {
		u += "?" + call.Query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, u, body)
	if err != nil {
		return apierr.New(apierr.CodeUnknown, "build request: "+err.Error(), 0).WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if call.Raw != nil {
		req.Header.Set("Accept", "*/*")
	}
	for k, vs := range header {
		req.Header[k] = vs
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apierr.FromTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		e := apierr.FromResponse(resp.StatusCode, raw)
		if e.Code == apierr.CodeUnauthorized {
			c.clearCredentials()
		}
		return e
	}

	if call.Raw != nil {
		if _, err := io.Copy(call.Raw, resp.Body); err != nil {
			return apierr.FromTransport(err)
		}
		return nil
	}
	if call.Out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(call.Out); err != nil && !errors.Is(err, io.EOF) {
		return apierr.New(apierr.CodeUnknown, "decode response: "+err.Error(), resp.StatusCode).WithCause(err)
	}
	return nil
}

func (c *Client) clearCredentials() {
	if err := c.creds.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear credentials after 401")
		return
	}
	log.Debug().Msg("credentials cleared after 401")
}

func (c *Client) fail(ctx context.Context, e *Error) error {
	ev := NewEvent(e, c.locale)
	if b, ok := ctx.Value(eventBufferKey{}).(*eventBuffer); ok {
		b.hold(ev)
		return e
	}
	c.notifier.Publish(ev)
	return e
}

type eventBufferKey struct{}

// eventBuffer queues events raised under a cache operation, whose mutation or
// fetch is still outstanding while they are raised.
type eventBuffer struct {
	n       *Notifier
	mu      sync.Mutex
	events  []Event
	flushed bool
}

// hold queues ev. Once the buffer is flushed, late events from a shared
// fetch that outlived its caller are published on their own goroutine.
func (b *eventBuffer) hold(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.flushed {
		b.events = append(b.events, ev)
		return
	}
	go b.n.Publish(ev)
}

func (b *eventBuffer) flush() {
	b.mu.Lock()
	events := b.events
	b.events, b.flushed = nil, true
	b.mu.Unlock()
	for _, ev := range events {
		b.n.Publish(ev)
	}
}

// holdEvents returns a context under which failures are queued, and the
// function that publishes them.
func (c *Client) holdEvents(ctx context.Context) (context.Context, func()) {
	b := &eventBuffer{n: c.notifier}
	return context.WithValue(ctx, eventBufferKey{}, b), b.flush
}

// mutate runs m on coll and publishes the failures it raised once the
// mutation has settled.
func mutate[T querycache.Entity[T]](ctx context.Context, c *Client, coll *querycache.Collection[T], m querycache.Mutation[T]) error {
	ctx, flush := c.holdEvents(ctx)
	defer flush()
	return normalize(coll.Mutate(ctx, m))
}

// cachedRead returns variant from coll, publishing fetch failures after the
// read returns.
func cachedRead[T querycache.Entity[T]](ctx context.Context, c *Client, coll *querycache.Collection[T], variant string) ([]T, error) {
	ctx, flush := c.holdEvents(ctx)
	defer flush()
	items, err := coll.Get(ctx, variant)
	return items, normalize(err)
}

// retryOptions returns the configured retry policy.
func (c *Client) retryOptions() []retry.Option {
	opts := []retry.Option{retry.WithMaxRetries(c.maxRetries)}
	if c.onRetry != nil {
		opts = append(opts, retry.OnRetry(c.onRetry))
	}
	if c.retryTimer != nil {
		opts = append(opts, retry.WithTimer(c.retryTimer))
	}
	return opts
}

// withRetry runs op under the client's retry policy.
func withRetry[T any](ctx context.Context, c *Client, op func(context.Context) (T, error)) (T, error) {
	return retry.Do(ctx, op, c.retryOptions()...)
}

// newDefaultExecutor constructs the shardqueue executor from SQ_* settings,
// falling back to defaults when they cannot be parsed.
func newDefaultExecutor() *shardqueue.ShardExecutor {
	cfg, err := shardqueue.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("invalid SQ_* settings, using defaults")
		cfg = shardqueue.Config{}
	}
	return shardqueue.NewShardExecutor(cfg)
}
