package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlotCreatesRestrictedFile(t *testing.T) {
	slot, err := NewSlot()
	require.NoError(t, err)
	defer slot.Remove()

	info, err := os.Stat(slot.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSlotNamesAreUnique(t *testing.T) {
	a, err := NewSlot()
	require.NoError(t, err)
	defer a.Remove()

	b, err := NewSlot()
	require.NoError(t, err)
	defer b.Remove()

	assert.NotEqual(t, a.Path(), b.Path())
	assert.Contains(t, a.Path(), "llmsuggest-")
}

func TestWriteThenRead(t *testing.T) {
	slot, err := NewSlot()
	require.NoError(t, err)
	defer slot.Remove()

	require.NoError(t, slot.Write("find . -type f"))

	got, err := slot.Read()
	require.NoError(t, err)
	assert.Equal(t, "find . -type f", got)
}

func TestWriteReplacesContent(t *testing.T) {
	slot, err := NewSlot()
	require.NoError(t, err)
	defer slot.Remove()

	require.NoError(t, slot.Write("first"))
	require.NoError(t, slot.Write("second"))

	got, err := slot.Read()
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	slot, err := NewSlot()
	require.NoError(t, err)
	defer slot.Remove()

	require.NoError(t, slot.Write("payload"))

	base := filepath.Base(slot.Path())
	entries, err := os.ReadDir(os.TempDir())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), base+".tmp."),
			"staging file left behind: %s", entry.Name())
	}
}

func TestRemove(t *testing.T) {
	slot, err := NewSlot()
	require.NoError(t, err)

	require.NoError(t, slot.Remove())
	_, err = os.Stat(slot.Path())
	assert.True(t, os.IsNotExist(err))

	// Removing an already-removed slot is not an error.
	require.NoError(t, slot.Remove())
}
