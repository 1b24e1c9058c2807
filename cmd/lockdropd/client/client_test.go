package client

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/app"
	lockdropd "github.com/iov-one/lockdrop/cmd/lockdropd/app"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/crypto"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/x/distribute"
	"github.com/iov-one/lockdrop/x/lockup"
)

const chainID = "lockdrop-client"

type fakeClock interface {
	clockwork.Clock
	Advance(time.Duration)
}

// localConn runs an in-process application, committing one block per
// broadcast transaction.
type localConn struct {
	app    app.BaseApp
	clock  fakeClock
	height int64
}

var _ Conn = (*localConn)(nil)

func newLocalConn(t *testing.T, genesis string) *localConn {
	t.Helper()
	stack, err := lockdropd.Stack(prometheus.NewRegistry())
	require.NoError(t, err)
	clock := clockwork.NewFakeClockAt(time.Unix(1000, 0))
	application, err := lockdropd.Application("lockdropd", stack, lockdropd.TxDecoder, clock, "", false)
	require.NoError(t, err)
	application.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: []byte(genesis)})
	return &localConn{app: application, clock: clock}
}

func (c *localConn) Status() (*ctypes.ResultStatus, error) {
	return &ctypes.ResultStatus{SyncInfo: ctypes.SyncInfo{LatestBlockHeight: c.height}}, nil
}

func (c *localConn) BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error) {
	res := &ctypes.ResultBroadcastTxCommit{Hash: tx.Hash()}
	c.height++
	c.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{
		ChainID: chainID,
		Height:  c.height,
		Time:    c.clock.Now(),
	}})
	res.CheckTx = c.app.CheckTx(tx)
	if res.CheckTx.IsOK() {
		res.DeliverTx = c.app.DeliverTx(tx)
		res.Height = c.height
	}
	c.app.EndBlock(abci.RequestEndBlock{Height: c.height})
	c.app.Commit()
	return res, nil
}

func (c *localConn) ABCIQueryWithOptions(path string, data common.HexBytes, opts client.ABCIQueryOptions) (*ctypes.ResultABCIQuery, error) {
	return &ctypes.ResultABCIQuery{Response: c.app.Query(abci.RequestQuery{
		Path:   path,
		Data:   data,
		Height: opts.Height,
	})}, nil
}

func TestClientLifecycle(t *testing.T) {
	admin := crypto.GenPrivKeyEd25519()
	voter := crypto.GenPrivKeyEd25519()
	adminAddr := admin.PublicKey().Address()
	voterAddr := voter.PublicKey().Address()

	conn := newLocalConn(t, fmt.Sprintf(`{
		"cash": [
			{"address": %q, "coins": ["5000 LDT"]},
			{"address": %q, "coins": ["300 LDT"]}
		],
		"lockup": {"registrars": [{"admin": %q, "ticker": "LDT"}]}
	}`, adminAddr, voterAddr, adminAddr))
	c := NewClient(conn)

	adminNonce := NewNonce(c, adminAddr)
	voterNonce := NewNonce(c, voterAddr)
	send := func(tx *lockdropd.Tx, key *crypto.PrivateKey, nonce *Nonce) (*BroadcastTxResponse, error) {
		t.Helper()
		n, err := nonce.Next()
		require.NoError(t, err)
		require.NoError(t, SignTx(tx, key, chainID, n))
		return c.BroadcastTx(tx)
	}

	registrar := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	distID := distribute.DistributionID(adminAddr, 7)
	voterID := lockup.VoterID(registrar, voterAddr)

	_, err := send(BuildLockTx(registrar, voterAddr, coin.NewCoin(100, 0, "LDT"), 9000), voter, voterNonce)
	require.NoError(t, err)

	res, err := send(BuildCreateDistributionTx(adminAddr, registrar, "LDT", 7, 2000, 3000), admin, adminNonce)
	require.NoError(t, err)
	assert.Equal(t, distID, res.Data)

	vault := distribute.VaultCondition(distID).Address()
	_, err = send(BuildSendTx(adminAddr, vault, coin.NewCoin(50, 0, "LDT"), "lockdrop"), admin, adminNonce)
	require.NoError(t, err)

	_, err = send(BuildRegisterTx(distID, voterID, voterAddr), voter, voterNonce)
	require.NoError(t, err)

	user, err := c.GetUser(voterAddr)
	require.NoError(t, err)
	assert.EqualValues(t, 2, user.Sequence)

	info, err := c.GetInfo(distID, voterID)
	require.NoError(t, err)
	require.NotNil(t, info.RegisteredWeight)
	assert.EqualValues(t, 100, *info.RegisteredWeight)
	assert.Equal(t, "100", info.ParticipantTotalWeight)

	// The claim is rejected during registration.
	_, err = send(BuildClaimTx(distID, voterID, voterAddr), voter, voterNonce)
	assert.True(t, distribute.ErrNotInClaimPhase.Is(err), "got %+v", err)

	// A transaction rejected by the check is not included in a block, so
	// its nonce must be reused.
	n, err := voterNonce.Query()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	conn.clock.Advance(1500 * time.Second)
	claim := BuildClaimTx(distID, voterID, voterAddr)
	require.NoError(t, SignTx(claim, voter, chainID, n))
	_, err = c.BroadcastTx(claim)
	require.NoError(t, err)

	wallet, err := c.GetWallet(voterAddr)
	require.NoError(t, err)
	assert.Equal(t, coin.NewCoin(250, 0, "LDT"), wallet.Coins.Get("LDT"))

	d, err := c.GetDistribution(distID)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), d.ClaimCount)

	height, err := c.Height()
	require.NoError(t, err)
	assert.EqualValues(t, 6, height)
}

func TestClientNotFound(t *testing.T) {
	c := NewClient(newLocalConn(t, `{}`))
	addr := lockdrop.Address(make([]byte, lockdrop.AddressLength))

	_, err := c.GetUser(addr)
	assert.True(t, errors.ErrNotFound.Is(err))

	wallet, err := c.GetWallet(addr)
	require.NoError(t, err)
	assert.Empty(t, wallet.Coins)

	_, err = c.GetDistribution(distribute.DistributionID(addr, 1))
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = c.AbciQuery("/nowhere", nil)
	assert.True(t, errors.ErrNotFound.Is(err))

	nonce := NewNonce(c, addr)
	n, err := nonce.Next()
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
	n, err = nonce.Next()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

type brokenConn struct {
	err error
}

func (c brokenConn) Status() (*ctypes.ResultStatus, error) {
	return nil, c.err
}

func (c brokenConn) BroadcastTxCommit(tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error) {
	return nil, c.err
}

func (c brokenConn) ABCIQueryWithOptions(string, common.HexBytes, client.ABCIQueryOptions) (*ctypes.ResultABCIQuery, error) {
	return nil, c.err
}

func TestClientConnectionFailures(t *testing.T) {
	addr := lockdrop.Address(make([]byte, lockdrop.AddressLength))

	cases := map[string]struct {
		connErr string
		wantErr *errors.Error
	}{
		"connection refused": {
			connErr: "dial tcp 127.0.0.1:26657: connect: connection refused",
			wantErr: errors.ErrNetwork,
		},
		"commit timeout": {
			connErr: "Timed out waiting for tx to be included in a block",
			wantErr: errors.ErrTimeout,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			c := NewClient(brokenConn{err: fmt.Errorf("%s", tc.connErr)})

			_, err := c.BroadcastTx(BuildSendTx(addr, addr, coin.NewCoin(1, 0, "LDT"), ""))
			assert.True(t, tc.wantErr.Is(err), "got %+v", err)

			_, err = c.Height()
			assert.True(t, errors.ErrNetwork.Is(err))
			_, err = c.GetUser(addr)
			assert.True(t, errors.ErrNetwork.Is(err))
		})
	}
}
