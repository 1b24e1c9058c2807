/*
Package client provides access to a running lockdrop node over the
Tendermint RPC: queries of the application state and transaction
broadcasting.
*/
package client

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/app"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/x/cash"
	"github.com/iov-one/lockdrop/x/distribute"
	"github.com/iov-one/lockdrop/x/sigs"
)

// Conn is the part of the Tendermint RPC client this package uses. It is
// implemented by client.HTTP and client.Local.
type Conn interface {
	Status() (*ctypes.ResultStatus, error)
	BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error)
	ABCIQueryWithOptions(path string, data common.HexBytes, opts client.ABCIQueryOptions) (*ctypes.ResultABCIQuery, error)
}

var _ Conn = (*client.HTTP)(nil)

// LockdropClient is a tendermint client wrapped to provide
// simple access to the data structures used by the lockdrop node.
type LockdropClient struct {
	conn Conn
}

// NewClient wraps a LockdropClient around an existing
// tendermint client connection.
func NewClient(conn Conn) *LockdropClient {
	return &LockdropClient{conn: conn}
}

// NewHTTPClient connects to the RPC of the node at remote, for example
// "http://localhost:26657".
func NewHTTPClient(remote string) *LockdropClient {
	return NewClient(client.NewHTTP(remote, "/websocket"))
}

// Height will parse out the Height from the status result
func (c *LockdropClient) Height() (int64, error) {
	status, err := c.conn.Status()
	if err != nil {
		return 0, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	return status.SyncInfo.LatestBlockHeight, nil
}

// AbciResponse contains a query result:
// a (possibly empty) list of key-value pairs, and the height
// at which it queried
type AbciResponse struct {
	Models []lockdrop.Model
	Height int64
}

// AbciQuery calls abci query on tendermint rpc,
// verifies if it is an error or empty, and if there is
// data pulls out the ResultSets from keys and values into
// a useful AbciResponse struct
func (c *LockdropClient) AbciQuery(path string, data []byte) (AbciResponse, error) {
	var out AbciResponse

	q, err := c.conn.ABCIQueryWithOptions(path, data, client.ABCIQueryOptions{})
	if err != nil {
		return out, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	resp := q.Response
	if resp.IsErr() {
		return out, errors.ABCIError(resp.Code, resp.Log)
	}
	out.Height = resp.Height

	var keys, vals app.ResultSet
	if err := keys.Unmarshal(resp.Key); err != nil {
		return out, errors.Wrap(err, "keys")
	}
	if err := vals.Unmarshal(resp.Value); err != nil {
		return out, errors.Wrap(err, "values")
	}
	out.Models, err = app.JoinResults(&keys, &vals)
	return out, err
}

// queryOne loads the single model stored under key of the query path into
// obj. It returns ErrNotFound if nothing is stored.
func (c *LockdropClient) queryOne(path string, key []byte, obj lockdrop.Persistent) error {
	resp, err := c.AbciQuery(path, key)
	if err != nil {
		return err
	}
	if len(resp.Models) == 0 {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", path, key)
	}
	return obj.Unmarshal(resp.Models[0].Value)
}

// GetUser returns the signature state of an address. ErrNotFound is returned
// for an address that never signed a transaction.
func (c *LockdropClient) GetUser(addr lockdrop.Address) (*sigs.UserData, error) {
	var user sigs.UserData
	if err := c.queryOne("/auth", addr, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetWallet returns the coins held by an address. An address holding
// nothing has an empty wallet.
func (c *LockdropClient) GetWallet(addr lockdrop.Address) (*cash.Set, error) {
	var wallet cash.Set
	switch err := c.queryOne("/wallets", addr, &wallet); {
	case err == nil:
		return &wallet, nil
	case errors.ErrNotFound.Is(err):
		return &cash.Set{}, nil
	default:
		return nil, err
	}
}

// GetDistribution returns the distribution stored under id.
func (c *LockdropClient) GetDistribution(id []byte) (*distribute.Distribution, error) {
	var d distribute.Distribution
	if err := c.queryOne("/distributions", id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetInfo returns the state of a voter in a distribution as seen by the
// node clock.
func (c *LockdropClient) GetInfo(distributionID, voterID []byte) (*distribute.Info, error) {
	resp, err := c.AbciQuery("/distributions/info", distribute.ParticipantID(distributionID, voterID))
	if err != nil {
		return nil, err
	}
	if len(resp.Models) == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "info")
	}
	var info distribute.Info
	if err := json.Unmarshal(resp.Models[0].Value, &info); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return &info, nil
}

// BroadcastTxResponse is the result of submitting a transaction.
type BroadcastTxResponse struct {
	Height int64
	Hash   []byte
	// Data is returned by the handler of the delivered message.
	Data []byte
	Log  string
}

// BroadcastTx sends the transaction and blocks until it is committed in a
// block. Check and deliver failures are returned as errors of the kind the
// application reported.
func (c *LockdropClient) BroadcastTx(tx lockdrop.Tx) (*BroadcastTxResponse, error) {
	raw, err := tx.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal tx")
	}
	res, err := c.conn.BroadcastTxCommit(raw)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "timed out") {
			return nil, errors.Wrap(errors.ErrTimeout, err.Error())
		}
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	if res.CheckTx.IsErr() {
		return nil, errors.Wrap(errors.ABCIError(res.CheckTx.Code, res.CheckTx.Log), "check tx")
	}
	if res.DeliverTx.IsErr() {
		return nil, errors.Wrap(errors.ABCIError(res.DeliverTx.Code, res.DeliverTx.Log), "deliver tx")
	}
	return &BroadcastTxResponse{
		Height: res.Height,
		Hash:   res.Hash,
		Data:   res.DeliverTx.Data,
		Log:    res.DeliverTx.Log,
	}, nil
}

// Nonce has a client/address pair, queries for the nonce
// and caches recent nonce locally to quickly sign
type Nonce struct {
	mutex  sync.Mutex
	client *LockdropClient
	addr   lockdrop.Address
	nonce  int64
	loaded bool
}

// NewNonce creates a nonce for a client / address pair.
// Call Query to force a query, Next to use cache if possible
func NewNonce(client *LockdropClient, addr lockdrop.Address) *Nonce {
	return &Nonce{client: client, addr: addr}
}

// Query always queries the blockchain for the next nonce
func (n *Nonce) Query() (int64, error) {
	var next int64
	switch user, err := n.client.GetUser(n.addr); {
	case err == nil:
		next = user.Sequence
	case errors.ErrNotFound.Is(err):
		// new account starts at 0
	default:
		return 0, err
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.nonce = next
	n.loaded = true
	return next, nil
}

// Next returns the nonce to sign the next transaction with. The first call
// queries the blockchain, later calls increment the cached value, assuming
// the previous nonce was used.
func (n *Nonce) Next() (int64, error) {
	n.mutex.Lock()
	if !n.loaded {
		n.mutex.Unlock()
		return n.Query()
	}
	defer n.mutex.Unlock()
	n.nonce++
	return n.nonce, nil
}
