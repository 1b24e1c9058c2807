package cash

import (
	"context"
	"testing"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/store"
	"github.com/iov-one/lockdrop/weavetest"
	"github.com/iov-one/lockdrop/weavetest/assert"
)

func TestSend(t *testing.T) {
	foo := coin.NewCoin(100, 0, "FOO")
	some := coin.NewCoin(300, 0, "SOME")

	perm := weavetest.NewCondition()
	perm2 := weavetest.NewCondition()

	cases := map[string]struct {
		signers        []lockdrop.Condition
		initState      map[string]coin.Coin
		msg            lockdrop.Msg
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
	}{
		"invalid message": {
			msg:            &SendMsg{Metadata: &lockdrop.Metadata{Schema: 1}},
			wantCheckErr:   errors.ErrInvalidAmount,
			wantDeliverErr: errors.ErrInvalidAmount,
		},
		"source must sign": {
			msg:            &SendMsg{Metadata: &lockdrop.Metadata{Schema: 1}, Amount: &foo, Source: perm.Address(), Destination: perm2.Address()},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"sender has no account": {
			signers:        []lockdrop.Condition{perm},
			msg:            &SendMsg{Metadata: &lockdrop.Metadata{Schema: 1}, Amount: &foo, Source: perm.Address(), Destination: perm2.Address()},
			wantDeliverErr: errors.ErrEmpty,
		},
		"sender too poor": {
			signers:        []lockdrop.Condition{perm},
			initState:      map[string]coin.Coin{string(perm.Address()): some},
			msg:            &SendMsg{Metadata: &lockdrop.Metadata{Schema: 1}, Amount: &foo, Source: perm.Address(), Destination: perm2.Address()},
			wantDeliverErr: errors.ErrInsufficientAmount,
		},
		"sender got cash": {
			signers:   []lockdrop.Condition{perm},
			initState: map[string]coin.Coin{string(perm.Address()): foo},
			msg:       &SendMsg{Metadata: &lockdrop.Metadata{Schema: 1}, Amount: &foo, Source: perm.Address(), Destination: perm2.Address()},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			auth := &weavetest.Auth{Signers: tc.signers}
			controller := NewController(NewWalletBucket())
			h := NewSendHandler(auth, controller)

			kv := store.MemStore()
			for addr, c := range tc.initState {
				assert.Nil(t, controller.IssueCoins(kv, lockdrop.Address(addr), c))
			}

			tx := &weavetest.Tx{Msg: tc.msg}
			ctx := context.Background()

			_, err := h.Check(ctx, kv, tx)
			assert.IsErr(t, tc.wantCheckErr, err)
			_, err = h.Deliver(ctx, kv, tx)
			assert.IsErr(t, tc.wantDeliverErr, err)
		})
	}
}
