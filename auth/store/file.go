package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/viant/afs"

	"github.com/wanderly/wanderly-go/auth"
)

// FileStore persists the credential snapshot as JSON so a session survives
// process restarts. Writes go to a sibling temp file first and are moved
// into place, so a crash mid-write never leaves a torn snapshot behind.
type FileStore struct {
	mu         sync.RWMutex
	url        string
	fs         afs.Service
	credential *auth.Credential
}

// NewFileStore creates a Store that persists the credential at the given
// location; any existing snapshot is loaded eagerly. An unreadable or
// corrupt snapshot behaves like an empty store.
func NewFileStore(URL string) *FileStore {
	ret := &FileStore{url: URL, fs: afs.New()}
	_ = ret.load()
	return ret
}

func (f *FileStore) Lookup() (*auth.Credential, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.credential == nil {
		return nil, false
	}
	return f.credential, true
}

func (f *FileStore) Save(credential *auth.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credential = credential
	return f.save()
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credential = nil
	ctx := context.Background()
	if ok, _ := f.fs.Exists(ctx, f.url); !ok {
		return nil
	}
	return f.fs.Delete(ctx, f.url)
}

func (f *FileStore) save() error {
	data, err := json.MarshalIndent(f.credential, "", "  ")
	if err != nil {
		return err
	}
	ctx := context.Background()
	tmp := f.url + ".tmp"
	if err = f.fs.Upload(ctx, tmp, 0o600, bytes.NewReader(data)); err != nil {
		return err
	}
	return f.fs.Move(ctx, tmp, f.url)
}

func (f *FileStore) load() error {
	ctx := context.Background()
	if ok, err := f.fs.Exists(ctx, f.url); err != nil || !ok {
		return err
	}
	data, err := f.fs.DownloadWithURL(ctx, f.url)
	if err != nil {
		return err
	}
	credential := &auth.Credential{}
	if err = json.Unmarshal(data, credential); err != nil {
		return err
	}
	if credential.AccessToken() != "" {
		f.credential = credential
	}
	return nil
}
