package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	_, found, err := storage.GetItem(ctx, "foo")
	require.NoError(t, err)
	require.False(t, found)

	value := []byte("bar")
	require.NoError(t, storage.SetItem(ctx, "foo", value))
	value[0] = 'c'
	stored, found, err := storage.GetItem(ctx, "foo")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "bar", string(stored))

	require.NoError(t, storage.RemoveItem(ctx, "foo"))
	_, found, err = storage.GetItem(ctx, "foo")
	require.NoError(t, err)
	require.False(t, found)
}

func TestScopedStorage(t *testing.T) {
	ctx := context.Background()
	shared := NewMemoryStorage()
	a := Scoped(shared, "a")
	b := Scoped(shared, "b")

	require.NoError(t, a.SetItem(ctx, DefaultName, []byte("1")))
	_, found, err := b.GetItem(ctx, DefaultName)
	require.NoError(t, err)
	require.False(t, found)

	value, found, err := shared.GetItem(ctx, "a/"+DefaultName)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", string(value))

	require.NoError(t, a.RemoveItem(ctx, DefaultName))
	_, found, err = shared.GetItem(ctx, "a/"+DefaultName)
	require.NoError(t, err)
	require.False(t, found)
}
