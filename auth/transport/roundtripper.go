package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderly/wanderly-go/auth"
	"github.com/wanderly/wanderly-go/auth/store"
)

// HeaderRequestID carries the correlation id stamped on every dispatched
// request; a replay keeps the id of its original.
const HeaderRequestID = "X-Request-Id"

const defaultRefreshTimeout = 15 * time.Second

// RoundTripper attaches the active access credential to outgoing requests
// and hands authorization failures to the refresh coordinator. It never
// refreshes on its own, and every non-auth outcome passes through untouched.
type RoundTripper struct {
	transport      http.RoundTripper
	store          store.Store
	refresher      auth.Refresher
	terminator     *auth.Terminator
	coordinator    *coordinator
	logger         *zap.Logger
	metrics        *Metrics
	refreshTimeout time.Duration
}

func New(options ...Option) (*RoundTripper, error) {
	ret := &RoundTripper{
		transport:      http.DefaultTransport,
		store:          store.NewMemoryStore(),
		logger:         zap.NewNop(),
		metrics:        NewMetrics(),
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.refresher == nil {
		return nil, errors.New("transport: refresher is required")
	}
	if ret.terminator == nil {
		ret.terminator = auth.NewTerminator(ret.store, nil)
	}
	ret.coordinator = newCoordinator(ret)
	return ret, nil
}

// Store returns the credential store backing this transport.
func (r *RoundTripper) Store() store.Store {
	return r.store
}

// Metrics returns the counter set updated by the refresh coordinator.
func (r *RoundTripper) Metrics() *Metrics {
	return r.metrics
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// 1) No credential: fail fast, no network call.
	credential, ok := r.store.Lookup()
	if !ok {
		return nil, auth.ErrNotAuthenticated
	}

	requestID := req.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	// Hold a replayable copy before the attempt consumes the body.
	replay := clone(req)
	replay.Header.Set(HeaderRequestID, requestID)

	attempt := clone(replay)
	attempt.Header.Set("Authorization", "Bearer "+credential.AccessToken())
	resp, err := r.transport.RoundTrip(attempt)
	if err != nil {
		return nil, err
	}

	// 2) Anything but a 401 is not ours to handle.
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	r.logger.Debug("authorization failure, joining refresh cycle",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("requestId", requestID))

	// 3) Block on the shared refresh cycle; the coordinator either replays
	// this request with the new credential or rejects it terminally. A 401
	// on the replay comes back here as an ordinary response and is returned
	// unchanged, so one original request never drives two refresh cycles.
	return r.coordinator.resolve(replay)
}
