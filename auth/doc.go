// Package auth holds the credential model shared across the Wanderly SDK:
// the active access/refresh token pair, the identity it was issued for, the
// refresh transport that exchanges a refresh token for a new access token,
// and the terminator that ends a session when that exchange fails.
//
// The package deliberately knows nothing about request dispatch or refresh
// coordination; those live in the transport sub-package.
package auth
