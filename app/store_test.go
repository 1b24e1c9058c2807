package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/orm"
	"github.com/iov-one/lockdrop/store"
	"github.com/iov-one/lockdrop/store/iavl"
	"github.com/iov-one/lockdrop/weavetest"
)

const dummyKey = "dummy"

// dummyInit copies the "dummy" genesis value into the store.
type dummyInit struct{}

func (dummyInit) FromGenesis(opts lockdrop.Options, kv lockdrop.KVStore) error {
	var value string
	if err := opts.ReadOptions(dummyKey, &value); err != nil {
		return err
	}
	if value == "" {
		return nil
	}
	return kv.Set([]byte(dummyKey), []byte(value))
}

func newTestStoreApp(t *testing.T, kv lockdrop.CommitKVStore) *StoreApp {
	t.Helper()
	qr := lockdrop.NewQueryRouter()
	orm.RegisterQuery(qr)
	return NewStoreApp("test", kv, qr, context.Background()).
		WithInit(ChainInitializers(dummyInit{}))
}

func TestStoreAppGenesis(t *testing.T) {
	cases := map[string]struct {
		chainID   string
		appState  string
		wantPanic bool
		wantValue []byte
	}{
		"genesis value stored": {
			chainID:   "test-chain",
			appState:  `{"dummy": "genesis"}`,
			wantValue: []byte("genesis"),
		},
		"empty app state": {
			chainID:   "test-chain",
			appState:  `{}`,
			wantValue: nil,
		},
		"missing app state": {
			chainID:   "test-chain",
			wantPanic: true,
		},
		"invalid chain id": {
			chainID:   "x",
			appState:  `{}`,
			wantPanic: true,
		},
		"malformed app state": {
			chainID:   "test-chain",
			appState:  `{"dummy": 7}`,
			wantPanic: true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			s := newTestStoreApp(t, iavl.MockCommitStore())
			req := abci.RequestInitChain{ChainId: tc.chainID, AppStateBytes: []byte(tc.appState)}
			if tc.wantPanic {
				assert.Panics(t, func() { s.InitChain(req) })
				return
			}
			s.InitChain(req)
			assert.Equal(t, tc.chainID, s.GetChainID())

			v, err := s.DeliverStore().Get([]byte(dummyKey))
			require.NoError(t, err)
			assert.Equal(t, tc.wantValue, v)

			// Genesis can be loaded only once.
			assert.Panics(t, func() { s.InitChain(req) })
		})
	}
}

func TestStoreAppCommitAndQuery(t *testing.T) {
	kv := iavl.MockCommitStore()
	s := newTestStoreApp(t, kv)
	s.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{"dummy": "one"}`)})

	now := time.Unix(1500, 0).UTC()
	s.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, Time: now}})
	got, err := lockdrop.BlockTime(s.BlockContext())
	require.NoError(t, err)
	assert.Equal(t, now, got)
	assert.Equal(t, "test-chain", lockdrop.GetChainID(s.BlockContext()))

	// Nothing is visible to queries before the commit.
	res := s.Query(abci.RequestQuery{Path: "/", Data: []byte(dummyKey)})
	require.Equal(t, uint32(0), res.Code, res.Log)
	var empty ResultSet
	require.NoError(t, empty.Unmarshal(res.Value))
	assert.Empty(t, empty.Results)

	s.EndBlock(abci.RequestEndBlock{})
	commit := s.Commit()
	assert.NotEmpty(t, commit.Data)

	res = s.Query(abci.RequestQuery{Path: "/", Data: []byte(dummyKey)})
	require.Equal(t, uint32(0), res.Code, res.Log)
	assert.EqualValues(t, 1, res.Height)
	var values ResultSet
	require.NoError(t, values.Unmarshal(res.Value))
	assert.Equal(t, [][]byte{[]byte("one")}, values.Results)

	res = s.Query(abci.RequestQuery{Path: "/?prefix", Data: []byte("_ld:")})
	require.Equal(t, uint32(0), res.Code, res.Log)
	var keys ResultSet
	require.NoError(t, keys.Unmarshal(res.Key))
	assert.Equal(t, [][]byte{[]byte(blockTimeKey), []byte(chainIDKey)}, keys.Results)

	last, err := LastBlockTime(s.DeliverStore())
	require.NoError(t, err)
	assert.Equal(t, now, last)

	res = s.Query(abci.RequestQuery{Path: "/nothing"})
	assert.Equal(t, errors.ErrNotFound.ABCICode(), res.Code)
	res = s.Query(abci.RequestQuery{Path: "/?range"})
	assert.Equal(t, errors.ErrInvalidInput.ABCICode(), res.Code)

	info := s.Info(abci.RequestInfo{})
	assert.Equal(t, "test", info.Data)
	assert.EqualValues(t, 1, info.LastBlockHeight)
	assert.Equal(t, commit.Data, info.LastBlockAppHash)

	_, err = LastBlockTime(store.MemStore())
	assert.True(t, errors.ErrNotFound.Is(err))

	// A restarted application keeps the chain id and the height.
	restarted := newTestStoreApp(t, kv)
	assert.Equal(t, "test-chain", restarted.GetChainID())
	height, ok := lockdrop.GetHeight(restarted.BlockContext())
	assert.True(t, ok)
	assert.EqualValues(t, 1, height)
}

func TestBaseApp(t *testing.T) {
	kv := iavl.MockCommitStore()
	handler := &weavetest.WriteHandler{Key: []byte("written"), Value: []byte("yes")}
	decoder := func(raw []byte) (lockdrop.Tx, error) {
		if string(raw) == "panic" {
			panic("cannot decode")
		}
		if string(raw) == "bad" {
			return nil, errors.Wrap(errors.ErrInvalidInput, "bad tx")
		}
		return &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/write"}}, nil
	}
	base := NewBaseApp(newTestStoreApp(t, kv), decoder, handler, false)
	base.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{}`)})
	base.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, Time: time.Now()}})

	check := base.CheckTx([]byte("ok"))
	assert.Equal(t, uint32(0), check.Code, check.Log)
	deliver := base.DeliverTx([]byte("ok"))
	assert.Equal(t, uint32(0), deliver.Code, deliver.Log)

	bad := base.DeliverTx([]byte("bad"))
	assert.Equal(t, errors.ErrInvalidInput.ABCICode(), bad.Code)
	panicked := base.CheckTx([]byte("panic"))
	assert.NotEqual(t, uint32(0), panicked.Code)

	handler.Err = errors.ErrUnauthorized
	failed := base.DeliverTx([]byte("ok"))
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), failed.Code)

	base.Commit()
	v, err := NewABCIStore(base).Get([]byte("written"))
	require.NoError(t, err)
	assert.Equal(t, []byte("yes"), v)
}
