package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

func TestJoinResults(t *testing.T) {
	models := []lockdrop.Model{
		lockdrop.Pair([]byte("a"), []byte("1")),
		lockdrop.Pair([]byte("b"), []byte("2")),
	}
	keys, err := ResultsFromKeys(models).Marshal()
	require.NoError(t, err)
	values, err := ResultsFromValues(models).Marshal()
	require.NoError(t, err)

	var k, v ResultSet
	require.NoError(t, k.Unmarshal(keys))
	require.NoError(t, v.Unmarshal(values))
	got, err := JoinResults(&k, &v)
	require.NoError(t, err)
	assert.Equal(t, models, got)

	_, err = JoinResults(ResultsFromKeys(models), ResultsFromValues(models[:1]))
	assert.True(t, errors.ErrInvalidState.Is(err))
}
