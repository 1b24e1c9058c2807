package utils

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/store"
	"github.com/iov-one/lockdrop/weavetest"
	"github.com/iov-one/lockdrop/x/distribute"
)

func TestRecovery(t *testing.T) {
	var h panicHandler
	r := NewRecovery()

	var buf bytes.Buffer
	ctx := lockdrop.WithLogger(context.Background(), log.NewTMLogger(&buf))
	s := store.MemStore()
	distID := distribute.DistributionID(weavetest.NewAddress(), 1)
	tx := &weavetest.Tx{Msg: &distribute.SetTimeOffsetMsg{
		Metadata:       &lockdrop.Metadata{Schema: 1},
		DistributionID: distID,
		TimeOffset:     -10,
	}}

	// Panic handler panics. Test the test tool.
	assert.Panics(t, func() { h.Check(ctx, s, tx) })
	assert.Panics(t, func() { h.Deliver(ctx, s, tx) })

	// Recovery wrapped handler returns an error.
	_, err := r.Check(ctx, s, tx, h)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Contains(t, err.Error(), "check panic")

	_, err = r.Deliver(ctx, s, tx, h)
	assert.True(t, errors.ErrPanic.Is(err))

	out := buf.String()
	assert.Contains(t, out, "transaction panicked")
	assert.Contains(t, out, "path=distribute/set_time_offset")
	assert.Contains(t, out, fmt.Sprintf("distribution=%X", distID))
	assert.Contains(t, out, "deliver panic")

	// Transactions without a message are recovered too.
	_, err = r.Deliver(ctx, s, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))

	// Handlers that do not panic are left alone.
	_, err = r.Deliver(ctx, s, tx, &weavetest.Handler{DeliverErr: distribute.ErrOracle})
	assert.True(t, distribute.ErrOracle.Is(err))
}

type panicHandler struct{}

var _ lockdrop.Handler = panicHandler{}

func (p panicHandler) Check(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	panic("check panic")
}

func (p panicHandler) Deliver(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	panic("deliver panic")
}
