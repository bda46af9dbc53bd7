package wanderly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/wanderly/wanderly-go/auth"
	"github.com/wanderly/wanderly-go/auth/store"
	"github.com/wanderly/wanderly-go/auth/transport"
)

// Client talks to the Wanderly backend. Requests issued through it carry
// the active access credential and survive credential expiry transparently;
// domain endpoints are reached through the generic JSON helpers.
type Client struct {
	baseURL    string
	base       http.RoundTripper
	store      store.Store
	terminator *auth.Terminator
	metrics    *transport.Metrics
	logger     *zap.Logger

	// httpClient routes through the refresh coordinator; plain bypasses it
	// for login and refresh calls, which authenticate themselves.
	httpClient *http.Client
	plain      *http.Client

	refreshTimeout   time.Duration
	onSessionExpired func()
}

func New(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("wanderly: base URL is required")
	}
	ret := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		base:    http.DefaultTransport,
		store:   store.NewMemoryStore(),
		metrics: transport.NewMetrics(),
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		opt(ret)
	}

	ret.plain = &http.Client{Transport: ret.base}
	ret.terminator = auth.NewTerminator(ret.store, ret.onSessionExpired)
	rt, err := transport.New(
		transport.WithTransport(ret.base),
		transport.WithStore(ret.store),
		transport.WithRefresher(auth.NewEndpointRefresher(ret.baseURL, ret.plain)),
		transport.WithTerminator(ret.terminator),
		transport.WithLogger(ret.logger),
		transport.WithMetrics(ret.metrics),
		transport.WithRefreshTimeout(ret.refreshTimeout),
	)
	if err != nil {
		return nil, err
	}
	ret.httpClient = &http.Client{Transport: rt}
	return ret, nil
}

// HTTPClient exposes the authenticated client for callers that build their
// own requests.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Metrics returns the refresh-cycle counters, e.g. for an exporter.
func (c *Client) Metrics() *transport.Metrics {
	return c.metrics
}

// Identity returns the identity of the stored credential, if any.
func (c *Client) Identity() (*auth.Identity, bool) {
	credential, ok := c.store.Lookup()
	if !ok || credential.Identity == nil {
		return nil, false
	}
	return credential.Identity, true
}

// userPayload mirrors the backend's user resource; ids arrive as numbers.
type userPayload struct {
	ID    json.Number `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  string      `json:"role"`
}

func (u *userPayload) identity() *auth.Identity {
	return &auth.Identity{ID: u.ID.String(), Email: u.Email, Name: u.Name, Role: u.Role}
}

// Login authenticates against the backend, installs the returned credential
// pair as the active session and re-arms the session terminator.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.Identity, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.plain.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	var decoded struct {
		AccessToken  string       `json:"access_token"`
		RefreshToken string       `json:"refresh_token"`
		User         *userPayload `json:"user"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("login response: %w", err)
	}
	if decoded.AccessToken == "" || decoded.RefreshToken == "" {
		return nil, errors.New("login response missing token pair")
	}

	identity := (*auth.Identity)(nil)
	if decoded.User != nil {
		identity = decoded.User.identity()
	} else if parsed, perr := auth.IdentityFromToken(decoded.AccessToken); perr == nil {
		identity = parsed
	}
	credential := &auth.Credential{
		Token: &oauth2.Token{
			AccessToken:  decoded.AccessToken,
			TokenType:    "Bearer",
			RefreshToken: decoded.RefreshToken,
		},
		Identity: identity,
	}
	if err = c.store.Save(credential); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}
	c.terminator.Reset()
	c.logger.Info("logged in", zap.String("email", email))
	return identity, nil
}

// Logout ends the session locally by dropping the credential pair; the
// backend keeps no server-side session state for the dashboard. The
// session-expired callback is not fired: it signals involuntary endings
// only.
func (c *Client) Logout(_ context.Context) error {
	c.logger.Info("logged out")
	return c.store.Clear()
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*auth.Identity, error) {
	var decoded struct {
		User userPayload `json:"user"`
	}
	if err := c.GetJSON(ctx, "/api/auth/me", &decoded); err != nil {
		return nil, err
	}
	return decoded.User.identity(), nil
}

// Do issues an authenticated request.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// GetJSON issues an authenticated GET and decodes the JSON response into
// out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues an authenticated POST with a JSON body and decodes the
// response into out; in and out may each be nil.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return "wanderly: unexpected status " + e.Status
}
