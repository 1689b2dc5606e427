package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "liftcalc.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestGetMissingKey(t *testing.T) {
	st := openTestStore(t)
	value, ok, err := st.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestPutOverwrites(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "k", "one"))
	require.NoError(t, st.Put(ctx, "k", "two"))

	value, ok, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", value)

	updated, ok, err := st.UpdatedAt(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now(), updated, time.Minute)
}

func TestDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "k", "v"))
	require.NoError(t, st.Delete(ctx, "k"))
	require.NoError(t, st.Delete(ctx, "k"))

	_, ok, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = st.UpdatedAt(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReopenKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liftcalc.db")
	ctx := context.Background()

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Put(ctx, "k", `{"weight":120}`))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	value, ok, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"weight":120}`, value)
}
