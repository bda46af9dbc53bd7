package wanderly

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wanderly/wanderly-go/auth/store"
	"github.com/wanderly/wanderly-go/auth/transport"
)

type Option func(*Client)

// WithStore sets the credential store; defaults to an in-memory store.
func WithStore(s store.Store) Option {
	return func(c *Client) {
		if s != nil {
			c.store = s
		}
	}
}

// WithHTTPTransport sets the base transport used for all network calls.
func WithHTTPTransport(base http.RoundTripper) Option {
	return func(c *Client) {
		if base != nil {
			c.base = base
		}
	}
}

// WithLogger sets the structured logger; defaults to a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRefreshTimeout bounds a single credential refresh exchange.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.refreshTimeout = timeout
	}
}

// WithMetrics sets the counter set shared with a metrics exporter.
func WithMetrics(metrics *transport.Metrics) Option {
	return func(c *Client) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// OnSessionExpired registers a callback fired once per terminated session,
// after the stored credential has been cleared.
func OnSessionExpired(notify func()) Option {
	return func(c *Client) {
		c.onSessionExpired = notify
	}
}
