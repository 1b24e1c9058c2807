package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/store"
	"github.com/iov-one/lockdrop/weavetest"
)

func TestRouter(t *testing.T) {
	r := NewRouter()

	good := &weavetest.Handler{}
	bad := &weavetest.Handler{
		CheckErr:   errors.ErrInvalidMsg,
		DeliverErr: errors.ErrInvalidMsg,
	}
	r.Handle(&weavetest.Msg{RoutePath: "test/good"}, good)
	r.Handle(&weavetest.Msg{RoutePath: "test/bad"}, bad)

	assert.Panics(t, func() { r.Handle(&weavetest.Msg{RoutePath: "test/good"}, good) })
	assert.Panics(t, func() { r.Handle(&weavetest.Msg{RoutePath: "l:7"}, good) })

	ctx := context.Background()
	db := store.MemStore()
	tx := func(path string) *weavetest.Tx {
		return &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: path}}
	}

	_, err := r.Check(ctx, db, tx("test/good"))
	require.NoError(t, err)
	_, err = r.Deliver(ctx, db, tx("test/good"))
	require.NoError(t, err)
	assert.Equal(t, 2, good.CallCount())

	_, err = r.Deliver(ctx, db, tx("test/bad"))
	assert.True(t, errors.ErrInvalidMsg.Is(err))
	assert.Equal(t, 1, bad.DeliverCallCount())

	_, err = r.Check(ctx, db, tx("test/missing"))
	assert.True(t, errors.ErrNotFound.Is(err))
	_, err = r.Deliver(ctx, db, tx("test/missing"))
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = r.Handler("test/missing")
	assert.True(t, errors.ErrNotFound.Is(err))
	h, err := r.Handler("test/good")
	require.NoError(t, err)
	assert.Equal(t, good, h)
}
