package iavl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitStoreVersions(t *testing.T) {
	s := MockCommitStore()
	require.NoError(t, s.LoadLatestVersion())

	id, err := s.LatestVersion()
	require.NoError(t, err)
	assert.EqualValues(t, 0, id.Version)

	cache := s.CacheWrap()
	require.NoError(t, cache.Set([]byte("distribution"), []byte("one")))
	got, err := s.Get([]byte("distribution"))
	require.NoError(t, err)
	assert.Nil(t, got, "cache writes must not be visible before write")

	require.NoError(t, cache.Write())
	first, err := s.Commit()
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Version)
	assert.NotEmpty(t, first.Hash)

	got, err = s.Get([]byte("distribution"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	// A discarded cache does not change the hash.
	discarded := s.CacheWrap()
	require.NoError(t, discarded.Delete([]byte("distribution")))
	discarded.Discard()
	second, err := s.Commit()
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.Version)
	assert.Equal(t, first.Hash, second.Hash)

	latest, err := s.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, second, latest)
}

func TestCommitStoreIterator(t *testing.T) {
	s := MockCommitStore()
	cache := s.CacheWrap()
	for _, k := range []string{"p1", "p2", "p3"} {
		require.NoError(t, cache.Set([]byte(k), []byte(k)))
	}
	require.NoError(t, cache.Write())
	_, err := s.Commit()
	require.NoError(t, err)

	view := s.CacheWrap()
	require.NoError(t, view.Delete([]byte("p2")))
	it, err := view.Iterator([]byte("p"), []byte("q"))
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for ; it.Valid(); err = it.Next() {
		require.NoError(t, err)
		keys = append(keys, string(it.Key()))
	}
	assert.Equal(t, []string{"p1", "p3"}, keys)
}
