package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileSlotReadAbsent(t *testing.T) {
	slot, err := NewFileSlot(filepath.Join(t.TempDir(), "reports.json"))
	require.NoError(t, err)

	data, ok, err := slot.Read(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, data)
}

func TestFileSlotWriteThenRead(t *testing.T) {
	slot, err := NewFileSlot(filepath.Join(t.TempDir(), "reports.json"))
	require.NoError(t, err)

	payload := []byte(`[{"id":"r1"}]`)
	require.NoError(t, slot.Write(context.Background(), payload))

	data, ok, err := slot.Read(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload, data)
}

func TestFileSlotWriteReplacesWhole(t *testing.T) {
	dir := t.TempDir()
	slot, err := NewFileSlot(filepath.Join(dir, "reports.json"))
	require.NoError(t, err)

	require.NoError(t, slot.Write(context.Background(), []byte(`["first write with a longer payload"]`)))
	require.NoError(t, slot.Write(context.Background(), []byte(`[]`)))

	data, ok, err := slot.Read(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`[]`), data)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileSlotCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "reports.json")
	slot, err := NewFileSlot(path)
	require.NoError(t, err)
	require.NoError(t, slot.Write(context.Background(), []byte(`[]`)))
	require.FileExists(t, path)
}
