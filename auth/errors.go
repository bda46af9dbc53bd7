package auth

import "errors"

var (
	// ErrNotAuthenticated is returned when a request is dispatched without
	// any credential in the store. No network call is made.
	ErrNotAuthenticated = errors.New("auth: not authenticated")

	// ErrSessionExpired is the terminal outcome delivered to every request
	// caught in a refresh cycle whose exchange failed. The session has been
	// terminated; the host must re-authenticate.
	ErrSessionExpired = errors.New("auth: session expired")
)
