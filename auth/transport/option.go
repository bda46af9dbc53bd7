package transport

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wanderly/wanderly-go/auth"
	"github.com/wanderly/wanderly-go/auth/store"
)

type Option func(*RoundTripper)

// WithTransport sets the base transport used for actual network calls.
func WithTransport(base http.RoundTripper) Option {
	return func(t *RoundTripper) {
		t.transport = base
	}
}

// WithStore sets the credential store.
func WithStore(s store.Store) Option {
	return func(t *RoundTripper) {
		t.store = s
	}
}

// WithRefresher sets the refresh transport; required.
func WithRefresher(refresher auth.Refresher) Option {
	return func(t *RoundTripper) {
		t.refresher = refresher
	}
}

// WithTerminator sets the session terminator invoked on refresh failure.
func WithTerminator(terminator *auth.Terminator) Option {
	return func(t *RoundTripper) {
		t.terminator = terminator
	}
}

// WithLogger sets the structured logger; defaults to a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *RoundTripper) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithRefreshTimeout bounds a single refresh exchange; a timeout is treated
// as a refresh failure.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(t *RoundTripper) {
		if timeout > 0 {
			t.refreshTimeout = timeout
		}
	}
}

// WithMetrics sets the counter set updated by the coordinator.
func WithMetrics(metrics *Metrics) Option {
	return func(t *RoundTripper) {
		if metrics != nil {
			t.metrics = metrics
		}
	}
}
