package trackingstore

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestUpdateThenReadRoundTrips(t *testing.T) {
	store := New(nil)
	path := filepath.Join(t.TempDir(), "nested", "a.lastUpdated")

	result, err := store.Update(path, map[string]*string{
		"b.lastUpdated": strp("100"),
		"a.error":       strp(""),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b.lastUpdated": "100", "a.error": ""}, result)

	read := store.Read(path)
	assert.Equal(t, result, read)
}

func TestUpdateRemovesNullKeys(t *testing.T) {
	store := New(nil)
	path := filepath.Join(t.TempDir(), "a.lastUpdated")

	_, err := store.Update(path, map[string]*string{"k": strp("v")})
	require.NoError(t, err)

	result, err := store.Update(path, map[string]*string{"k": nil})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestReadMissingFileReturnsEmptyMap(t *testing.T) {
	store := New(nil)
	m := store.Read(filepath.Join(t.TempDir(), "missing"))
	assert.NotNil(t, m)
	assert.Empty(t, m)
}

func TestValuesAreEscaped(t *testing.T) {
	store := New(nil)
	path := filepath.Join(t.TempDir(), "a.lastUpdated")

	_, err := store.Update(path, map[string]*string{"msg.error": strp("line1\nline2=x")})
	require.NoError(t, err)

	read := store.Read(path)
	assert.Equal(t, "line1\nline2=x", read["msg.error"])
}

func TestDeleteRemovesFile(t *testing.T) {
	store := New(nil)
	path := filepath.Join(t.TempDir(), "a.lastUpdated")
	_, err := store.Update(path, map[string]*string{"k": strp("v")})
	require.NoError(t, err)

	require.NoError(t, store.Delete(path))
	assert.Empty(t, store.Read(path))
	// deleting an already-absent file is not an error
	require.NoError(t, store.Delete(path))
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	store := New(nil)
	path := filepath.Join(t.TempDir(), "a.lastUpdated")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "writer"
			_, err := store.Update(path, map[string]*string{key: strp("x")})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	read := store.Read(path)
	assert.Equal(t, "x", read["writer"])
}
