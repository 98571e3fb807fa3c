package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T, path string) *SQLiteKV {
	t.Helper()
	kv, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestSQLiteGetSetDelete(t *testing.T) {
	ctx := context.Background()
	kv := openTestSQLite(t, filepath.Join(t.TempDir(), "podium.db"))

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k", []byte("v1")))
	require.NoError(t, kv.Set(ctx, "k", []byte("v2")))
	value, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), value)

	require.NoError(t, kv.Delete(ctx, "k"))
	_, ok, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "podium.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", []byte("kept")))
	require.NoError(t, first.Close())

	second := openTestSQLite(t, path)
	value, ok, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("kept"), value)
	assert.Equal(t, path, second.Path())
}

func TestSQLitePollReportsForeignWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "podium.db")
	writer := openTestSQLite(t, path)
	reader := openTestSQLite(t, path)

	require.NoError(t, writer.Set(ctx, "k", []byte("v1")))
	_, _, err := reader.Get(ctx, "k")
	require.NoError(t, err)
	changes := reader.Subscribe(4)

	require.NoError(t, reader.poll(ctx))
	assert.Len(t, changes, 0)

	require.NoError(t, writer.Set(ctx, "k", []byte("v2")))
	require.NoError(t, reader.poll(ctx))
	require.Len(t, changes, 1)
	assert.Equal(t, Change{Key: "k", Value: []byte("v2")}, <-changes)

	require.NoError(t, writer.Delete(ctx, "k"))
	require.NoError(t, reader.poll(ctx))
	change := <-changes
	assert.True(t, change.Deleted)
	assert.Equal(t, "k", change.Key)
}

func TestSQLiteOwnWritesAreNotReported(t *testing.T) {
	ctx := context.Background()
	kv := openTestSQLite(t, filepath.Join(t.TempDir(), "podium.db"))
	changes := kv.Subscribe(4)

	require.NoError(t, kv.Set(ctx, "k", []byte("v1")))
	require.NoError(t, kv.poll(ctx))
	assert.Len(t, changes, 0)
}

func TestSQLiteWatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "podium.db")
	writer := openTestSQLite(t, path)
	reader := openTestSQLite(t, path)

	_, _, err := reader.Get(ctx, "k")
	require.NoError(t, err)
	changes := reader.Subscribe(8)
	require.NoError(t, reader.Watch())

	require.NoError(t, writer.Set(ctx, "k", []byte("hello")))

	select {
	case change := <-changes:
		assert.Equal(t, "k", change.Key)
		assert.Equal(t, []byte("hello"), change.Value)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestSQLiteClosed(t *testing.T) {
	ctx := context.Background()
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "podium.db"))
	require.NoError(t, err)
	changes := kv.Subscribe(1)
	require.NoError(t, kv.Watch())
	require.NoError(t, kv.Close())

	_, open := <-changes
	assert.False(t, open)
	assert.ErrorIs(t, kv.Set(ctx, "k", nil), ErrClosed)
	assert.ErrorIs(t, kv.Watch(), ErrClosed)
	assert.NoError(t, kv.Close())
}
