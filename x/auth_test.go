package x

import (
	"context"
	"testing"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/weavetest"
	"github.com/iov-one/lockdrop/weavetest/assert"
)

func TestAuth(t *testing.T) {
	a := weavetest.NewCondition()
	b := weavetest.NewCondition()
	c := weavetest.NewCondition()

	ctx1 := &weavetest.CtxAuth{Key: "foo"}
	ctx2 := &weavetest.CtxAuth{Key: "bar"}

	cases := map[string]struct {
		ctx          lockdrop.Context
		auth         Authenticator
		mainSigner   lockdrop.Condition
		wantInCtx    lockdrop.Condition
		wantNotInCtx lockdrop.Condition
		wantAll      []lockdrop.Condition
	}{
		"empty context": {
			ctx:          context.Background(),
			auth:         &weavetest.Auth{},
			wantNotInCtx: b,
		},
		"signer a": {
			ctx:          context.Background(),
			auth:         &weavetest.Auth{Signer: a},
			mainSigner:   a,
			wantInCtx:    a,
			wantNotInCtx: b,
			wantAll:      []lockdrop.Condition{a},
		},
		"chained signers are not duplicated": {
			ctx: context.Background(),
			auth: ChainAuth(
				&weavetest.Auth{Signer: b},
				&weavetest.Auth{Signer: a},
				&weavetest.Auth{Signer: b}),
			mainSigner:   b,
			wantInCtx:    b,
			wantNotInCtx: c,
			wantAll:      []lockdrop.Condition{b, a},
		},
		"ctxAuth checks what is set by same key": {
			ctx:          ctx1.SetConditions(context.Background(), a, b),
			auth:         ctx1,
			mainSigner:   a,
			wantInCtx:    b,
			wantNotInCtx: c,
			wantAll:      []lockdrop.Condition{a, b},
		},
		"ctxAuth with different key sees nothing": {
			ctx:          ctx1.SetConditions(context.Background(), a, b),
			auth:         ctx2,
			wantNotInCtx: a,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.mainSigner, MainSigner(tc.ctx, tc.auth))
			if tc.wantInCtx != nil {
				assert.Equal(t, true, tc.auth.HasAddress(tc.ctx, tc.wantInCtx.Address()))
			}
			if tc.wantNotInCtx != nil {
				assert.Equal(t, false, tc.auth.HasAddress(tc.ctx, tc.wantNotInCtx.Address()))
			}
			assert.Equal(t, true, HasAllConditions(tc.ctx, tc.auth, tc.wantAll...))
			assert.Equal(t, true, HasAllAddresses(tc.ctx, tc.auth, GetAddresses(tc.ctx, tc.auth)...))
			if tc.wantNotInCtx != nil {
				all := append(append([]lockdrop.Condition(nil), tc.wantAll...), tc.wantNotInCtx)
				assert.Equal(t, false, HasAllConditions(tc.ctx, tc.auth, all...))
			}
		})
	}
}
