package wanderly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderly/wanderly-go/auth"
	"github.com/wanderly/wanderly-go/auth/transport"
)

// fakeBackend emulates the dashboard backend's auth surface: login issues a
// token pair, refresh exchanges the refresh token for the currently valid
// access token, and every other route requires that access token.
type fakeBackend struct {
	server *httptest.Server

	mu            sync.Mutex
	counter       int
	access        string
	refresh       string
	refreshCalls  int
	refuseRefresh bool
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{}
	mux := http.NewServeMux()
	// method-gated registration; the go1.22 "METHOD /path" mux patterns are
	// unavailable on the go1.21 toolchain this module is built with
	handle := func(method, pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
				return
			}
			h(w, r)
		})
	}
	handle(http.MethodPost, "/api/auth/login", b.handleLogin)
	handle(http.MethodPost, "/api/auth/refresh", b.handleRefresh)
	handle(http.MethodGet, "/api/auth/me", b.handleMe)
	b.server = httptest.NewServer(mux)
	return b
}

func (b *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Password != "secret" {
		http.Error(w, `{"error":"Invalid email or password"}`, http.StatusUnauthorized)
		return
	}
	b.mu.Lock()
	b.counter++
	b.access = fmt.Sprintf("access-%d", b.counter)
	b.refresh = "refresh-1"
	access, refresh := b.access, b.refresh
	b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"access_token":%q,"refresh_token":%q,"user":{"id":7,"email":%q,"name":"Ada","role":"admin"}}`,
		access, refresh, body.Email)
}

func (b *fakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.refreshCalls++
	ok := !b.refuseRefresh && r.Header.Get("Authorization") == "Bearer "+b.refresh
	access := b.access
	b.mu.Unlock()
	if !ok {
		http.Error(w, `{"error":"Invalid user"}`, http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"access_token":%q}`, access)
}

func (b *fakeBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	ok := r.Header.Get("Authorization") == "Bearer "+b.access
	b.mu.Unlock()
	if !ok {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"user":{"id":7,"email":"ada@example.com","name":"Ada","role":"admin"}}`))
}

// invalidateAccess expires the outstanding access token: the backend starts
// rejecting it, and a successful refresh hands out the new one.
func (b *fakeBackend) invalidateAccess() {
	b.mu.Lock()
	b.counter++
	b.access = fmt.Sprintf("access-%d", b.counter)
	b.mu.Unlock()
}

func (b *fakeBackend) refreshCallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestClientLoginAndMe(t *testing.T) {
	backend := newFakeBackend()
	defer backend.server.Close()

	client, err := New(backend.server.URL)
	require.NoError(t, err)

	identity, err := client.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "7", identity.ID)
	assert.Equal(t, "admin", identity.Role)

	stored, ok := client.Identity()
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", stored.Email)

	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", me.ID)
	assert.Equal(t, 0, backend.refreshCallCount())
}

func TestClientRejectedLogin(t *testing.T) {
	backend := newFakeBackend()
	defer backend.server.Close()

	client, err := New(backend.server.URL)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	_, ok := client.Identity()
	assert.False(t, ok)
}

func TestClientSilentRefresh(t *testing.T) {
	backend := newFakeBackend()
	defer backend.server.Close()

	metrics := transport.NewMetrics()
	client, err := New(backend.server.URL, WithMetrics(metrics))
	require.NoError(t, err)
	_, err = client.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)

	backend.invalidateAccess()

	// invisible to the caller: detected, refreshed once, replayed
	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", me.ID)
	assert.Equal(t, 1, backend.refreshCallCount())

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.Counters[transport.MetricRefreshSuccess])
}

func TestClientSessionExpiry(t *testing.T) {
	backend := newFakeBackend()
	defer backend.server.Close()

	var expired atomic.Int32
	client, err := New(backend.server.URL, OnSessionExpired(func() { expired.Add(1) }))
	require.NoError(t, err)
	_, err = client.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)

	backend.invalidateAccess()
	backend.mu.Lock()
	backend.refuseRefresh = true
	backend.mu.Unlock()

	_, err = client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrSessionExpired), "got %v", err)
	assert.Equal(t, int32(1), expired.Load())
	_, ok := client.Identity()
	assert.False(t, ok, "credential cleared on termination")

	// a fresh login recovers the session
	_, err = client.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	backend.mu.Lock()
	backend.refuseRefresh = false
	backend.mu.Unlock()
	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", me.ID)
}

func TestClientLogout(t *testing.T) {
	backend := newFakeBackend()
	defer backend.server.Close()

	client, err := New(backend.server.URL)
	require.NoError(t, err)
	_, err = client.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, client.Logout(context.Background()))

	_, err = client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrNotAuthenticated), "got %v", err)
	assert.Equal(t, 0, backend.refreshCallCount())
}
