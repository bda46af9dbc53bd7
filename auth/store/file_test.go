package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/wanderly/wanderly-go/auth"
)

func testCredential() *auth.Credential {
	return &auth.Credential{
		Token: &oauth2.Token{
			AccessToken:  "access-1",
			TokenType:    "Bearer",
			RefreshToken: "refresh-1",
		},
		Identity: &auth.Identity{ID: "42", Email: "ada@example.com", Role: "admin"},
	}
}

func TestFileStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	first := NewFileStore(path)
	_, ok := first.Lookup()
	assert.False(t, ok)
	require.NoError(t, first.Save(testCredential()))

	// a fresh instance simulates a new process
	second := NewFileStore(path)
	credential, ok := second.Lookup()
	require.True(t, ok)
	assert.Equal(t, "access-1", credential.AccessToken())
	assert.Equal(t, "refresh-1", credential.RefreshToken())
	require.NotNil(t, credential.Identity)
	assert.Equal(t, "ada@example.com", credential.Identity.Email)
}

func TestFileStoreClearRemovesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	fs := NewFileStore(path)
	require.NoError(t, fs.Save(testCredential()))
	require.NoError(t, fs.Clear())

	_, ok := fs.Lookup()
	assert.False(t, ok)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	_, ok = NewFileStore(path).Lookup()
	assert.False(t, ok)
}

func TestFileStoreClearWithoutSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	assert.NoError(t, NewFileStore(path).Clear())
}

func TestFileStoreIgnoresCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, ok := NewFileStore(path).Lookup()
	assert.False(t, ok)
}

func TestMemoryStoreReplaceAndClear(t *testing.T) {
	s := NewMemoryStore()
	_, ok := s.Lookup()
	assert.False(t, ok)

	require.NoError(t, s.Save(testCredential()))
	credential, ok := s.Lookup()
	require.True(t, ok)
	assert.Equal(t, "access-1", credential.AccessToken())

	replacement := testCredential()
	replacement.Token.AccessToken = "access-2"
	require.NoError(t, s.Save(replacement))
	credential, _ = s.Lookup()
	assert.Equal(t, "access-2", credential.AccessToken())

	require.NoError(t, s.Clear())
	_, ok = s.Lookup()
	assert.False(t, ok)
}
