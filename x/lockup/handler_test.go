package lockup

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/app"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/store"
	"github.com/iov-one/lockdrop/weavetest"
	"github.com/iov-one/lockdrop/weavetest/assert"
	"github.com/iov-one/lockdrop/x/cash"
)

func TestCreateRegistrar(t *testing.T) {
	admin := weavetest.NewCondition()

	cases := map[string]struct {
		signer  lockdrop.Condition
		msg     lockdrop.Msg
		wantErr *errors.Error
	}{
		"success": {
			signer: admin,
			msg:    &CreateRegistrarMsg{Metadata: &lockdrop.Metadata{Schema: 1}, Admin: admin.Address(), Ticker: "LDT"},
		},
		"admin must sign": {
			signer:  weavetest.NewCondition(),
			msg:     &CreateRegistrarMsg{Metadata: &lockdrop.Metadata{Schema: 1}, Admin: admin.Address(), Ticker: "LDT"},
			wantErr: errors.ErrUnauthorized,
		},
		"invalid ticker": {
			signer:  admin,
			msg:     &CreateRegistrarMsg{Metadata: &lockdrop.Metadata{Schema: 1}, Admin: admin.Address(), Ticker: "x"},
			wantErr: errors.ErrCurrencyMismatch,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			auth := &weavetest.Auth{Signer: tc.signer}
			r := app.NewRouter()
			RegisterRoutes(r, auth, cash.NewController(cash.NewWalletBucket()))

			tx := &weavetest.Tx{Msg: tc.msg}
			_, err := r.Check(context.Background(), db, tx)
			assert.IsErr(t, tc.wantErr, err)
			res, err := r.Deliver(context.Background(), db, tx)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}
			var reg Registrar
			assert.Nil(t, NewRegistrarBucket().One(db, res.Data, &reg))
			assert.Equal(t, "LDT", reg.Ticker)
		})
	}
}

func TestDepositAndWithdraw(t *testing.T) {
	chain := weavetest.NewChain(time.Unix(1000, 0))
	db := store.MemStore()
	bank := cash.NewController(cash.NewWalletBucket())

	admin := weavetest.NewCondition()
	alice := weavetest.NewCondition()
	auth := &weavetest.CtxAuth{Key: "auth"}
	r := app.NewRouter()
	RegisterRoutes(r, auth, bank)

	assert.Nil(t, bank.IssueCoins(db, alice.Address(), coin.NewCoin(100, 0, "LDT")))
	assert.Nil(t, bank.IssueCoins(db, alice.Address(), coin.NewCoin(100, 0, "OTH")))

	deliver := func(signer lockdrop.Condition, msg lockdrop.Msg) (*lockdrop.DeliverResult, error) {
		ctx := auth.SetConditions(chain.Context(), signer)
		return r.Deliver(ctx, db, &weavetest.Tx{Msg: msg})
	}

	res, err := deliver(admin, &CreateRegistrarMsg{Metadata: &lockdrop.Metadata{Schema: 1}, Admin: admin.Address(), Ticker: "LDT"})
	assert.Nil(t, err)
	registrarID := res.Data
	vault := VaultCondition(registrarID).Address()

	deposit := func(amount coin.Coin, kind DepositKind, end lockdrop.UnixTime, period int64) *DepositMsg {
		return &DepositMsg{
			Metadata:  &lockdrop.Metadata{Schema: 1},
			Registrar: registrarID,
			Authority: alice.Address(),
			Amount:    &amount,
			Kind:      kind,
			EndTs:     end,
			Period:    period,
		}
	}

	_, err = deliver(admin, deposit(coin.NewCoin(10, 0, "LDT"), Cliff, chain.Now()+50, 0))
	assert.IsErr(t, errors.ErrUnauthorized, err)
	_, err = deliver(alice, deposit(coin.NewCoin(10, 0, "OTH"), Cliff, chain.Now()+50, 0))
	assert.IsErr(t, errors.ErrCurrencyMismatch, err)
	_, err = deliver(alice, deposit(coin.NewCoin(10, 0, "LDT"), Cliff, chain.Now(), 0))
	assert.IsErr(t, errors.ErrExpired, err)
	_, err = deliver(alice, deposit(coin.NewCoin(500, 0, "LDT"), Cliff, chain.Now()+50, 0))
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	res, err = deliver(alice, deposit(coin.NewCoin(30, 0, "LDT"), Cliff, chain.Now()+50, 0))
	assert.Nil(t, err)
	assert.Equal(t, VoterID(registrarID, alice.Address()), res.Data)
	_, err = deliver(alice, deposit(coin.NewCoin(20, 0, "LDT"), Constant, 0, 3600))
	assert.Nil(t, err)

	assertBalance := func(addr lockdrop.Address, want int64) {
		t.Helper()
		coins, err := bank.Balance(db, addr)
		assert.Nil(t, err)
		assert.Equal(t, want, coins.Get("LDT").Whole)
	}
	assertBalance(alice.Address(), 50)
	assertBalance(vault, 50)

	oracle := NewOracle()
	voterID := VoterID(registrarID, alice.Address())
	w, err := oracle.GuaranteedLockedWeight(db, registrarID, voterID, chain.Now(), chain.Now()+40)
	assert.Nil(t, err)
	assert.Equal(t, uint64(50), w)

	withdraw := &WithdrawMsg{
		Metadata:  &lockdrop.Metadata{Schema: 1},
		Registrar: registrarID,
		Authority: alice.Address(),
		Amount:    coin.NewCoinp(30, 0, "LDT"),
	}
	_, err = deliver(alice, withdraw)
	assert.IsErr(t, ErrLocked, err)

	chain.Advance(50 * time.Second)
	_, err = deliver(admin, withdraw)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	_, err = deliver(alice, withdraw)
	assert.Nil(t, err)
	assertBalance(alice.Address(), 80)
	assertBalance(vault, 20)

	// the constant deposit is still there
	_, err = deliver(alice, withdraw)
	assert.IsErr(t, ErrLocked, err)
	w, err = oracle.GuaranteedLockedWeight(db, registrarID, voterID, chain.Now(), chain.Now()+40)
	assert.Nil(t, err)
	assert.Equal(t, uint64(20), w)
}

func TestOracle(t *testing.T) {
	db := store.MemStore()
	registrars := NewRegistrarBucket()
	voters := NewVoterBucket()

	admin := weavetest.NewAddress()
	reg1, err := registrars.Put(db, nil, &Registrar{Metadata: &lockdrop.Metadata{Schema: 1}, Admin: admin, Ticker: "LDT"})
	assert.Nil(t, err)
	reg2, err := registrars.Put(db, nil, &Registrar{Metadata: &lockdrop.Metadata{Schema: 1}, Admin: admin, Ticker: "LDT"})
	assert.Nil(t, err)

	authority := weavetest.NewAddress()
	voterID := VoterID(reg1, authority)
	_, err = voters.Put(db, voterID, &Voter{
		Metadata:  &lockdrop.Metadata{Schema: 1},
		Registrar: reg1,
		Authority: authority,
		Deposits:  []Deposit{{Amount: coin.NewCoin(1000, 0, "LDT"), Kind: Constant, Period: 1000}},
	})
	assert.Nil(t, err)

	oracle := NewOracle()

	assert.Nil(t, oracle.HasRegistrar(db, reg1))
	assert.IsErr(t, errors.ErrNotFound, oracle.HasRegistrar(db, []byte("missing")))

	got, err := oracle.VoterAuthority(db, reg1, voterID)
	assert.Nil(t, err)
	assert.Equal(t, authority, got)

	_, err = oracle.VoterAuthority(db, reg2, voterID)
	assert.IsErr(t, errors.ErrInvalidInput, err)
	_, err = oracle.VoterAuthority(db, reg1, VoterID(reg1, weavetest.NewAddress()))
	assert.IsErr(t, errors.ErrNotFound, err)

	w, err := oracle.GuaranteedLockedWeight(db, reg1, voterID, 100, 200)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1000), w)
	_, err = oracle.GuaranteedLockedWeight(db, reg1, voterID, 200, 100)
	assert.IsErr(t, errors.ErrInvalidInput, err)
}

func TestGenesis(t *testing.T) {
	admin := weavetest.NewAddress()
	opts := lockdrop.Options{
		"lockup": []byte(`{"registrars": [{"admin": "` + admin.String() + `", "ticker": "LDT"}, {"admin": "` + admin.String() + `", "ticker": "ABC"}]}`),
	}
	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	var reg Registrar
	assert.Nil(t, NewRegistrarBucket().One(db, []byte{0, 0, 0, 0, 0, 0, 0, 2}, &reg))
	assert.Equal(t, "ABC", reg.Ticker)
	assert.Equal(t, admin, reg.Admin)

	bad := lockdrop.Options{"lockup": []byte(`{"registrars": [{"ticker": "LDT"}]}`)}
	assert.IsErr(t, errors.ErrInvalidInput, Initializer{}.FromGenesis(bad, store.MemStore()))
}
