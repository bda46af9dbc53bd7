package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/wanderly/wanderly-go/auth"
)

// coordinator serializes credential refreshes. The first caller to observe
// an authorization failure becomes the leader of a refresh cycle; callers
// failing while the cycle is in flight join its queue instead of starting
// another exchange. A cycle ends with every queued request either replayed
// under the new credential, in enqueue order, or rejected with
// ErrSessionExpired.
type coordinator struct {
	rt *RoundTripper

	mu         sync.Mutex
	refreshing bool
	waiters    []*waiter
}

// waiter is one blocked caller: the request to replay and the channel its
// outcome arrives on. Every waiter is resolved exactly once.
type waiter struct {
	request *http.Request
	done    chan outcome
}

type outcome struct {
	response *http.Response
	err      error
}

func newCoordinator(rt *RoundTripper) *coordinator {
	return &coordinator{rt: rt}
}

// resolve blocks until the refresh cycle the caller joined (or started)
// settles, and returns the replayed outcome. The leader occupies the first
// queue slot, so it is resolved first.
func (c *coordinator) resolve(req *http.Request) (*http.Response, error) {
	w := &waiter{request: req, done: make(chan outcome, 1)}

	c.mu.Lock()
	c.waiters = append(c.waiters, w)
	leader := !c.refreshing
	if leader {
		c.refreshing = true
	} else {
		c.rt.metrics.add(MetricRefreshCoalesced, 1)
	}
	c.mu.Unlock()

	if leader {
		c.runCycle(req.Context())
	}
	result := <-w.done
	return result.response, result.err
}

// runCycle performs the single exchange and drains the queue. The queue swap
// and the return to idle happen under one lock acquisition, so no waiter can
// join a cycle that has already settled.
func (c *coordinator) runCycle(ctx context.Context) {
	credential, err := c.exchange(ctx)

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	if err != nil {
		c.rt.metrics.add(MetricRefreshFailure, 1)
		c.rt.logger.Warn("credential refresh failed, terminating session",
			zap.Error(err), zap.Int("waiters", len(waiters)))
		if c.rt.terminator.Terminate() {
			c.rt.metrics.add(MetricSessionTerminated, 1)
		}
		for _, w := range waiters {
			w.done <- outcome{err: auth.ErrSessionExpired}
		}
		return
	}

	c.rt.metrics.add(MetricRefreshSuccess, 1)
	c.rt.logger.Debug("credential refreshed", zap.Int("waiters", len(waiters)))

	// Sequential replay keeps resolution strictly in enqueue order.
	for _, w := range waiters {
		response, rerr := c.replay(w.request, credential)
		if rerr != nil {
			c.rt.metrics.add(MetricReplayFailure, 1)
		} else {
			c.rt.metrics.add(MetricReplaySuccess, 1)
		}
		w.done <- outcome{response: response, err: rerr}
	}
}

// exchange calls the refresh transport once, bounded by the configured
// timeout, and installs the new credential. The cycle is detached from the
// leader's request context: queued waiters share the cycle's fate, not the
// leader's cancellation.
func (c *coordinator) exchange(ctx context.Context) (*auth.Credential, error) {
	current, ok := c.rt.store.Lookup()
	if !ok || current.RefreshToken() == "" {
		return nil, auth.ErrNotAuthenticated
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.rt.refreshTimeout)
	defer cancel()

	token, err := c.rt.refresher.Refresh(ctx, current.RefreshToken())
	if err != nil {
		return nil, err
	}
	if token == nil || token.AccessToken == "" {
		return nil, errors.New("refresh produced no usable credential")
	}
	if token.RefreshToken == "" {
		// backend does not rotate refresh tokens; keep the current one
		token.RefreshToken = current.RefreshToken()
	}
	identity := current.Identity
	if decoded, derr := auth.IdentityFromToken(token.AccessToken); derr == nil {
		identity = decoded
	}
	credential := &auth.Credential{Token: token, Identity: identity}
	if err = c.rt.store.Save(credential); err != nil {
		return nil, fmt.Errorf("store refreshed credential: %w", err)
	}
	return credential, nil
}

func (c *coordinator) replay(req *http.Request, credential *auth.Credential) (*http.Response, error) {
	retry := clone(req)
	retry.Header.Set("Authorization", "Bearer "+credential.AccessToken())
	return c.rt.transport.RoundTrip(retry)
}

func (c *coordinator) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
