package storage

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	key, err := store.Save("report.pdf", "application/pdf", []byte("contents"))
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.Contains(t, key, ".pdf")

	reader, err := store.Open(key)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)
	assert.Equal(t, []byte("contents"), data)

	require.NoError(t, store.Delete(key))
	_, err = store.Open(key)
	assert.Error(t, err)

	// Deleting a missing key is not an error.
	assert.NoError(t, store.Delete(key))
}

func TestMemStoreRoundTrip(t *testing.T) {
	store := NewMemStore()

	key, err := store.Save("note.txt", "text/plain", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	reader, err := store.Open(key)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, store.Delete(key))
	assert.Zero(t, store.Len())
}
