package store

import (
	"sync"

	"github.com/wanderly/wanderly-go/auth"
)

// Store is the process-wide holder of the active credential pair. Updates
// are whole-credential replacements performed under the store's own lock, so
// a concurrent reader never observes half of an old pair and half of a new
// one.
type Store interface {
	Lookup() (*auth.Credential, bool)
	Save(credential *auth.Credential) error
	Clear() error
}

type memoryStore struct {
	mu         sync.RWMutex
	credential *auth.Credential
}

// NewMemoryStore returns a Store that keeps the credential in memory only.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (m *memoryStore) Lookup() (*auth.Credential, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.credential == nil {
		return nil, false
	}
	return m.credential, true
}

func (m *memoryStore) Save(credential *auth.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credential = credential
	return nil
}

func (m *memoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credential = nil
	return nil
}
