package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmartin/llmsuggest/internal/orchestrate"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	store, err := NewStore()
	require.NoError(t, err)
	return store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newStore(t)

	in := &orchestrate.Session{
		LastQuery:  "list files recursively",
		LastResult: "find . -type f",
	}
	require.NoError(t, store.Save("zsh-1234", in))

	out, err := store.Load("zsh-1234")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadMissingSessionIsEmpty(t *testing.T) {
	store := newStore(t)

	out, err := store.Load("zsh-9999")
	require.NoError(t, err)
	assert.Equal(t, &orchestrate.Session{}, out)
}

func TestLoadCorruptSessionDegradesToEmpty(t *testing.T) {
	store := newStore(t)

	path, err := store.path("zsh-1234")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	out, err := store.Load("zsh-1234")
	require.NoError(t, err)
	assert.Equal(t, &orchestrate.Session{}, out)
}

func TestSessionFileIsOwnerOnly(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save("zsh-1234", &orchestrate.Session{LastQuery: "secret plans"}))

	path, err := store.path("zsh-1234")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestRemove(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save("zsh-1234", &orchestrate.Session{LastQuery: "q"}))
	require.NoError(t, store.Remove("zsh-1234"))

	out, err := store.Load("zsh-1234")
	require.NoError(t, err)
	assert.Equal(t, &orchestrate.Session{}, out)

	// Removing twice is fine.
	require.NoError(t, store.Remove("zsh-1234"))
}

func TestInvalidSessionIDRejected(t *testing.T) {
	store := newStore(t)

	_, err := store.Load("../escape")
	require.Error(t, err)

	err = store.Save("zsh 1234", &orchestrate.Session{})
	require.Error(t, err)
}

func TestStaleSessionsPruned(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Save("zsh-old", &orchestrate.Session{LastQuery: "q"}))

	stalePath := filepath.Join(store.dir, "zsh-old.json")
	old := time.Now().Add(-2 * staleAfter)
	require.NoError(t, os.Chtimes(stalePath, old, old))

	// Opening a fresh store prunes sessions whose shell died without
	// running the exit hook.
	_, err = NewStore()
	require.NoError(t, err)

	_, statErr := os.Stat(stalePath)
	assert.True(t, os.IsNotExist(statErr))
}
