package auth

import "sync"

// CredentialClearer is the slice of the credential store the terminator
// needs; satisfied by store.Store.
type CredentialClearer interface {
	Clear() error
}

// Terminator ends the authenticated session after an unrecoverable refresh
// failure: it clears the credential store and signals the host exactly once
// per session, no matter how many failure paths race into it. A new login
// re-arms it via Reset.
type Terminator struct {
	mu         sync.Mutex
	terminated bool
	store      CredentialClearer
	notify     func()
}

// NewTerminator returns a Terminator over the given store. notify may be
// nil; when set it is invoked once per termination, after the store is
// cleared, so the host can route the user back to authentication.
func NewTerminator(store CredentialClearer, notify func()) *Terminator {
	return &Terminator{store: store, notify: notify}
}

// Terminate ends the session. It reports whether this call performed the
// termination; concurrent and repeated calls collapse into one.
func (t *Terminator) Terminate() bool {
	t.mu.Lock()
	if t.terminated {
		t.mu.Unlock()
		return false
	}
	t.terminated = true
	t.mu.Unlock()

	if t.store != nil {
		_ = t.store.Clear()
	}
	if t.notify != nil {
		t.notify()
	}
	return true
}

// Reset re-arms the terminator after a new credential has been established.
func (t *Terminator) Reset() {
	t.mu.Lock()
	t.terminated = false
	t.mu.Unlock()
}

// Terminated reports whether the current session has been ended.
func (t *Terminator) Terminated() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.terminated
}
