package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "cat.jpg", strings.NewReader("payload")))

	rc, err := store.Open(ctx, "cat.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "payload", string(data))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat.jpg"}, keys)

	require.NoError(t, store.Delete(ctx, "cat.jpg"))
	_, err = store.Open(ctx, "cat.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "media", "photos")
	_, err := NewLocalStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../escape.jpg", "a/b.jpg", `a\b.jpg`, "."} {
		assert.Error(t, store.Save(ctx, key, strings.NewReader("x")), "key %q", key)
		_, openErr := store.Open(ctx, key)
		assert.Error(t, openErr, "key %q", key)
	}
}

func TestLocalStoreDeleteMissingIsNoError(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "ghost.jpg"))
}

func TestLocalStoreListSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, store.Save(context.Background(), "cat.jpg", strings.NewReader("x")))

	keys, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cat.jpg"}, keys)
}
