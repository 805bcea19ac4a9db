package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreLifecycle exercises the Store contract shared by all backends.
func runStoreLifecycle(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing.snap")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "tables/fib-40.snap", []byte("forty")))

	got, err := store.Get(ctx, "tables/fib-40.snap")
	require.NoError(t, err)
	assert.Equal(t, []byte("forty"), got)

	// Put replaces existing content.
	require.NoError(t, store.Put(ctx, "tables/fib-40.snap", []byte("forty-one")))
	got, err = store.Get(ctx, "tables/fib-40.snap")
	require.NoError(t, err)
	assert.Equal(t, []byte("forty-one"), got)

	// Streaming writes become visible on Close.
	w, err := store.Create(ctx, "tables/fib-10.snap")
	require.NoError(t, err)
	_, err = w.Write([]byte("ten"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err = store.Get(ctx, "tables/fib-10.snap")
	require.NoError(t, err)
	assert.Equal(t, []byte("ten"), got)

	// Aborted writes leave nothing behind.
	w, err = store.Create(ctx, "tables/aborted.snap")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())

	_, err = store.Get(ctx, "tables/aborted.snap")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "other.snap", []byte("x")))

	names, err := store.List(ctx, "tables/")
	require.NoError(t, err)
	assert.Equal(t, []string{"tables/fib-10.snap", "tables/fib-40.snap"}, names)

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, names, 3)

	require.NoError(t, store.Delete(ctx, "tables/fib-10.snap"))
	require.NoError(t, store.Delete(ctx, "tables/fib-10.snap"), "deleting a missing blob is not an error")

	_, err = store.Get(ctx, "tables/fib-10.snap")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	runStoreLifecycle(t, NewMemoryStore())
}

func TestMemoryStore_CopiesData(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "a", data))
	data[0] = 'z'

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryStore_WriteAfterClose(t *testing.T) {
	store := NewMemoryStore()

	w, err := store.Create(context.Background(), "a")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late"))
	assert.Error(t, err)
	assert.Error(t, w.Close())
}
