// Package retry re-invokes operations that fail with a retryable normalized
// error, waiting an exponentially growing, jittered delay between attempts.
//
// Attempts are strictly sequential. Terminal kinds (UNAUTHORIZED, FORBIDDEN,
// NOT_FOUND, VALIDATION_ERROR, UNKNOWN_ERROR) and errors that are not
// normalized are returned immediately without waiting.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
)

const (
	// DefaultMaxRetries bounds the number of invocations of an operation.
	DefaultMaxRetries = 3

	BaseDelay = 1000 * time.Millisecond
	MaxJitter = 1000 * time.Millisecond
	MaxDelay  = 30 * time.Second
)

// Delay returns the wait before retrying after failed attempt n (n >= 1):
// min(BaseDelay*2^(n-1) + jitter, MaxDelay) with jitter uniform in
// [0, MaxJitter).
func Delay(attempt int) time.Duration {
	return delay(attempt, rand.N(MaxJitter))
}

func delay(attempt int, jitter time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= MaxDelay {
			return MaxDelay
		}
	}
	if d+jitter > MaxDelay {
		return MaxDelay
	}
	return d + jitter
}

// IsRetryable reports whether err is a normalized error of a retryable kind.
func IsRetryable(err error) bool { return apierr.IsRetryable(err) }

// Option tunes a single Do call.
type Option func(*settings)

type settings struct {
	maxRetries int
	onRetry    func(attempt int, err *apierr.Error)
	timer      backoff.Timer
	jitter     func() time.Duration
}

// WithMaxRetries sets the maximum number of invocations. Values below 1 are
// treated as 1.
func WithMaxRetries(n int) Option {
	return func(s *settings) { s.maxRetries = max(n, 1) }
}

// OnRetry registers a callback invoked with the 1-based number of the failed
// attempt and its error, before the backoff wait.
func OnRetry(fn func(attempt int, err *apierr.Error)) Option {
	return func(s *settings) { s.onRetry = fn }
}

// WithTimer replaces the wall-clock timer used for backoff waits.
func WithTimer(t backoff.Timer) Option {
	return func(s *settings) { s.timer = t }
}

// withJitter pins the jitter source; used by tests.
func withJitter(fn func() time.Duration) Option {
	return func(s *settings) { s.jitter = fn }
}

// schedule implements backoff.BackOff with the Delay formula.
type schedule struct {
	attempt int
	jitter  func() time.Duration
}

func (s *schedule) NextBackOff() time.Duration {
	s.attempt++
	return delay(s.attempt, s.jitter())
}

func (s *schedule) Reset() { s.attempt = 0 }

// Do runs op until it succeeds, fails terminally, or has been invoked the
// configured maximum number of times. The returned error is the most recent
// failure. If ctx is cancelled during a wait, Do stops and returns a TIMEOUT
// error wrapping the context error.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), opts ...Option) (T, error) {
	s := settings{
		maxRetries: DefaultMaxRetries,
		jitter:     func() time.Duration { return rand.N(MaxJitter) },
	}
	for _, opt := range opts {
		opt(&s)
	}

	var (
		attempt int
		last    error
	)
	b := backoff.WithContext(
		backoff.WithMaxRetries(&schedule{jitter: s.jitter}, uint64(s.maxRetries-1)),
		ctx,
	)

	operation := func() (T, error) {
		attempt++
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		last = err
		if !IsRetryable(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	notify := func(err error, wait time.Duration) {
		e, _ := apierr.As(err)
		retriesTotal.WithLabelValues(string(e.Code)).Inc()
		log.Debug().
			Int("attempt", attempt).
			Int("max_retries", s.maxRetries).
			Dur("wait", wait).
			Str("code", string(e.Code)).
			Msg("retrying request")
		if s.onRetry != nil {
			s.onRetry(attempt, e)
		}
	}

	res, err := backoff.RetryNotifyWithTimerAndData(operation, b, notify, s.timer)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return res, apierr.FromTransport(ctx.Err()).WithCause(joinCause(ctx.Err(), last))
	}
	return res, err
}

// Run is Do for operations without a result.
func Run(ctx context.Context, op func(context.Context) error, opts ...Option) error {
	_, err := Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts...)
	return err
}

func joinCause(ctxErr, last error) error {
	if last == nil {
		return ctxErr
	}
	return errors.Join(ctxErr, last)
}
