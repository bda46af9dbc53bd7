package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Identity describes the authenticated dashboard user.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Credential is the active access/refresh token pair together with the
// identity it was issued for. At most one credential is active at a time and
// it is only ever replaced wholesale, never field by field.
//
// Token expiry is not tracked client side: an expired access token is
// discovered through a rejected request, never by inspecting the token.
type Credential struct {
	Token    *oauth2.Token `json:"token"`
	Identity *Identity     `json:"identity,omitempty"`
}

// AccessToken returns the bearer token attached to outgoing requests.
func (c *Credential) AccessToken() string {
	if c == nil || c.Token == nil {
		return ""
	}
	return c.Token.AccessToken
}

// RefreshToken returns the long-lived token used to obtain a new access
// token.
func (c *Credential) RefreshToken() string {
	if c == nil || c.Token == nil {
		return ""
	}
	return c.Token.RefreshToken
}

// IdentityFromToken decodes identity claims from an access JWT without
// verifying its signature. The backend remains the authority on the token;
// the decoded claims are display data only, and the expiry claim is
// deliberately ignored.
func IdentityFromToken(accessToken string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}
	identity := &Identity{}
	if sub, _ := claims["sub"].(string); sub != "" {
		identity.ID = sub
	}
	if email, _ := claims["email"].(string); email != "" {
		identity.Email = email
	}
	if role, _ := claims["role"].(string); role != "" {
		identity.Role = role
	}
	return identity, nil
}
