package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dom/tablebook/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	storage := session.NewFileStorage(path)

	require.NoError(t, storage.Set(session.KeyToken, "token-abc"))
	require.NoError(t, storage.Set(session.KeyUser, `{"id":1,"name":"Alice"}`))

	// A fresh instance over the same path must see the values: this is
	// what survives a process restart.
	reopened := session.NewFileStorage(path)
	token, ok := reopened.Get(session.KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "token-abc", token)
	user, ok := reopened.Get(session.KeyUser)
	assert.True(t, ok)
	assert.Equal(t, `{"id":1,"name":"Alice"}`, user)
}

func TestFileStorage_MissingFileReadsEmpty(t *testing.T) {
	storage := session.NewFileStorage(filepath.Join(t.TempDir(), "nope.toml"))

	_, ok := storage.Get(session.KeyToken)
	assert.False(t, ok)
}

func TestFileStorage_CorruptedFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is not toml ]["), 0600))

	storage := session.NewFileStorage(path)
	_, ok := storage.Get(session.KeyToken)
	assert.False(t, ok)
}

func TestFileStorage_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	storage := session.NewFileStorage(path)

	require.NoError(t, storage.Set(session.KeyToken, "token-abc"))
	require.NoError(t, storage.Set(session.KeyIssuedAt, "12345"))

	require.NoError(t, storage.Clear(session.KeyToken, session.KeyUser, session.KeyIssuedAt))
	_, ok := storage.Get(session.KeyToken)
	assert.False(t, ok)
	_, ok = storage.Get(session.KeyIssuedAt)
	assert.False(t, ok)

	// Clearing keys that are already absent is a no-op.
	require.NoError(t, storage.Clear(session.KeyToken))
}

func TestFileStorage_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.toml")
	storage := session.NewFileStorage(path)

	require.NoError(t, storage.Set(session.KeyToken, "token-abc"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
