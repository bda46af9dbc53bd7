package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Refresher exchanges a refresh token for a new access token. The exchange
// is fallible, possibly slow, and not safe to invoke concurrently with
// itself; the transport coordinator serializes calls to it.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// EndpointRefresher implements Refresher against the dashboard backend,
// which accepts the refresh token as a bearer credential on a fixed
// endpoint and answers with a new access token.
type EndpointRefresher struct {
	baseURL string
	client  *http.Client
}

// NewEndpointRefresher returns a Refresher bound to the backend at baseURL.
// A nil client falls back to http.DefaultClient.
func NewEndpointRefresher(baseURL string, client *http.Client) *EndpointRefresher {
	if client == nil {
		client = http.DefaultClient
	}
	return &EndpointRefresher{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (r *EndpointRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/auth/refresh", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+refreshToken)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("refresh rejected: status %v", resp.StatusCode)
	}
	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("refresh response: %w", err)
	}
	if payload.AccessToken == "" {
		return nil, errors.New("refresh response missing access token")
	}
	return &oauth2.Token{
		AccessToken:  payload.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: payload.RefreshToken,
	}, nil
}
