package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreDefaultsWhenUnset(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	defer store.Close()

	v, err := store.GetInt(context.Background(), "1000", "screenrecord_enable_mic", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestSQLiteStorePutOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.PutInt(ctx, "1000", "screenrecord_show_taps", 1))
	require.NoError(t, store.PutInt(ctx, "1000", "screenrecord_show_taps", 0))
	require.NoError(t, store.PutInt(ctx, "1000", "screenrecord_low_quality", 1))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	taps, err := reopened.GetInt(ctx, "1000", "screenrecord_show_taps", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, taps)

	low, err := reopened.GetInt(ctx, "1000", "screenrecord_low_quality", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, low)
}

func TestSQLiteStoreScopesByUser(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.PutInt(ctx, "1000", "screenrecord_enable_mic", 1))

	other, err := store.GetInt(ctx, "1001", "screenrecord_enable_mic", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, other)
}

func TestOpenSQLiteRejectsEmptyPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	v, err := store.GetInt(ctx, "u", "k", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	require.NoError(t, store.PutInt(ctx, "u", "k", 1))
	v, err = store.GetInt(ctx, "u", "k", 7)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
