package main

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteBackend(t *testing.T) {
	store, err := OpenSQLiteBackend(filepath.Join(t.TempDir(), "data", "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get("unsplash_test_1")
	require.NoError(t, err)
	assert.False(t, ok)

	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put("unsplash_test_1", []byte("first"), t0))
	require.NoError(t, store.Put("unsplash_test_1", []byte("second"), t0.Add(time.Minute)))
	require.NoError(t, store.Put("unsplash_test_2", []byte("other"), t0.Add(-time.Hour)))

	data, ok, err := store.Get("unsplash_test_1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", string(data), "writes replace the whole entry")

	n, err := store.DeleteBefore(t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, ok, _ = store.Get("unsplash_test_2")
	assert.False(t, ok)
}

func TestSQLiteBackendSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	now := time.Now()

	store, err := OpenSQLiteBackend(path)
	require.NoError(t, err)
	cs := testCache(store, &now)
	require.NoError(t, cs.Put("sports", 3, json.RawMessage(`{"total":7}`)))
	require.NoError(t, store.Close())

	store, err = OpenSQLiteBackend(path)
	require.NoError(t, err)
	defer store.Close()
	got, ok, err := testCache(store, &now).Get("sports", 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"total":7}`, string(got))
}

func TestMemoryBackendCopiesEntries(t *testing.T) {
	m := NewMemoryBackend(8, time.Hour)
	entry := []byte("abc")
	require.NoError(t, m.Put("k", entry, time.Now()))
	entry[0] = 'x'

	got, ok, err := m.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))

	_, ok, err = m.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
