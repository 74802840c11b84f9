package client

// Functional options accepted by New.

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Option configures a Client during construction in New.
//
// Options run before the middleware chain is installed, so transport options
// end up underneath the built-in stages.
type Option func(*Client) error

// WithHTTPClient uses a copy of hc. Its Transport becomes the base of the
// middleware chain.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client must not be nil")
		}
		cp := *hc
		if cp.Timeout == 0 {
			cp.Timeout = c.http.Timeout
		}
		c.http = &cp
		return nil
	}
}

// WithHTTPTimeout sets the per-attempt http.Client Timeout. Prefer context
// deadlines for whole operations; retries multiply this bound.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging logs method, URL, status and duration of every request at
// debug level. It has no effect in the production environment.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.debug = true
		}
		return nil
	}
}

// WithEnvironment names the deployment environment ("development",
// "staging", "production").
func WithEnvironment(env string) Option {
	return func(c *Client) error {
		if env == "" {
			return errors.New("environment must not be empty")
		}
		c.environment = env
		return nil
	}
}

// WithCredentials sets the token source. The default is an empty
// MemoryCredentials.
func WithCredentials(p CredentialProvider) Option {
	return func(c *Client) error {
		if p == nil {
			return errors.New("credential provider must not be nil")
		}
		c.creds = p
		return nil
	}
}

// WithToken is shorthand for WithCredentials(NewMemoryCredentials(token)).
func WithToken(token string) Option {
	return WithCredentials(NewMemoryCredentials(token))
}

// WithMiddleware appends stages after the built-in credential and request-id
// stages.
func WithMiddleware(stages ...Middleware) Option {
	return func(c *Client) error {
		c.middleware = append(c.middleware, stages...)
		return nil
	}
}

// WithNotifier shares an existing notification bus.
func WithNotifier(n *Notifier) Option {
	return func(c *Client) error {
		if n == nil {
			return errors.New("notifier must not be nil")
		}
		c.notifier = n
		return nil
	}
}

// WithLocale selects the language of user-facing error messages. Unknown
// locales fall back to the default catalog.
func WithLocale(locale string) Option {
	return func(c *Client) error {
		c.locale = locale
		return nil
	}
}

// WithRetryPolicy bounds the number of attempts (including the first) for
// retryable failures and optionally observes each retry.
func WithRetryPolicy(maxRetries int, onRetry func(attempt int, err *Error)) Option {
	return func(c *Client) error {
		if maxRetries < 1 {
			return fmt.Errorf("max retries must be >= 1, got %d", maxRetries)
		}
		c.maxRetries = maxRetries
		c.onRetry = onRetry
		return nil
	}
}

// WithExecutor replaces the executor that serializes cache mutations.
func WithExecutor(e Executor) Option {
	return func(c *Client) error {
		if e == nil {
			return errors.New("executor must not be nil")
		}
		c.exec = e
		return nil
	}
}
