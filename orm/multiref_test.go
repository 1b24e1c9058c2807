package orm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/lockdrop/errors"
)

func TestMultiRefOrdering(t *testing.T) {
	m := &MultiRef{}
	require.NoError(t, m.Add([]byte("c")))
	require.NoError(t, m.Add([]byte("a")))
	require.NoError(t, m.Add([]byte("b")))
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, m.Refs)

	err := m.Add([]byte("b"))
	assert.True(t, errors.ErrDuplicate.Is(err))

	require.NoError(t, m.Remove([]byte("b")))
	assert.Equal(t, [][]byte{[]byte("a"), []byte("c")}, m.Refs)
	assert.True(t, errors.ErrNotFound.Is(m.Remove([]byte("b"))))

	raw, err := m.Marshal()
	require.NoError(t, err)
	var got MultiRef
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, m.Refs, got.Refs)
}

func TestSequence(t *testing.T) {
	db := newStore()
	s := NewSequence("bucket", "id")
	for want := int64(1); want <= 3; want++ {
		got, err := s.NextInt(db)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	bz, err := s.NextVal(db)
	require.NoError(t, err)
	assert.Equal(t, int64(4), DecodeSequence(bz))

	other := NewSequence("bucket", "other")
	got, err := other.NextInt(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}
