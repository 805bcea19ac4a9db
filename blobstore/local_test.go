package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	runStoreLifecycle(t, NewLocalStore(t.TempDir()))
}

func TestLocalStore_Layout(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "nested/dir/fib.snap", []byte("data")))

	// Verify file exists on disk
	content, err := os.ReadFile(filepath.Join(tmpDir, "nested", "dir", "fib.snap"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), content)

	// No temp files remain after commit.
	entries, err := os.ReadDir(filepath.Join(tmpDir, "nested", "dir"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fib.snap", entries[0].Name())
}

func TestLocalStore_ListIgnoresInFlightWrites(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	w, err := store.Create(ctx, "pending.snap")
	require.NoError(t, err)
	_, err = w.Write([]byte("not yet"))
	require.NoError(t, err)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, w.Close())

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"pending.snap"}, names)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "does-not-exist"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Put(ctx, "x", nil), context.Canceled)
}
