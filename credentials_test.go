package client

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCredentials(t *testing.T) {
	m := NewMemoryCredentials("")
	_, ok := m.Token()
	assert.False(t, ok)

	m.Set("abc")
	tok, ok := m.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	require.NoError(t, m.Clear())
	_, ok = m.Token()
	assert.False(t, ok)
}

func TestFileCredentials_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.yaml")
	f := NewFileCredentials(path)

	_, ok := f.Token()
	assert.False(t, ok, "missing file means no token")
	require.NoError(t, f.Clear(), "clearing a missing file is not an error")

	require.NoError(t, f.Save("persisted"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, ok := NewFileCredentials(path).Token()
	assert.True(t, ok)
	assert.Equal(t, "persisted", tok)

	require.NoError(t, f.Clear())
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileCredentials_CorruptFileIsNoToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), 0o600))
	_, ok := NewFileCredentials(path).Token()
	assert.False(t, ok)
}

type failingCreds struct{ MemoryCredentials }

func (*failingCreds) Clear() error { return errors.New("read-only store") }

func TestChainCredentials(t *testing.T) {
	durable := NewMemoryCredentials("")
	session := NewMemoryCredentials("session")
	chain := NewChainCredentials(durable, session)

	tok, ok := chain.Token()
	require.True(t, ok)
	assert.Equal(t, "session", tok)

	durable.Set("durable")
	tok, _ = chain.Token()
	assert.Equal(t, "durable", tok, "earlier providers win")

	require.NoError(t, chain.Clear())
	_, ok = chain.Token()
	assert.False(t, ok, "clear empties every provider")

	broken := &failingCreds{}
	other := NewMemoryCredentials("x")
	err := NewChainCredentials(broken, other).Clear()
	assert.EqualError(t, err, "read-only store")
	_, ok = other.Token()
	assert.False(t, ok, "a failing provider does not stop the others")
}
