// Package store defines the credential store used by the authorization
// helpers in the parent auth package.
//
// It ships with an in-memory implementation that is sufficient for tests
// and embedding, and a file-backed implementation whose JSON snapshot lets
// a session survive process restarts.
package store
