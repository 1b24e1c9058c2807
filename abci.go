package lockdrop

import (
	"fmt"

	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"

	"github.com/iov-one/lockdrop/errors"
)

// DeliverResult is the outcome of a successfully delivered transaction.
// Failures are reported as errors, never as a result.
type DeliverResult struct {
	// Data is the machine readable outcome, such as the ID of a created
	// distribution or participant.
	Data []byte
	Log  string
	// Tags are indexed by tendermint, so transactions can be searched by
	// action.
	Tags []common.KVPair
}

func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{Data: d.Data, Log: d.Log, Tags: d.Tags}
}

// CheckResult is the outcome of a transaction accepted by CheckTx.
type CheckResult struct {
	Data []byte
	Log  string
	// GasAllocated is the maximum units of work the transaction may use.
	GasAllocated int64
}

func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{Data: c.Data, Log: c.Log, GasWanted: c.GasAllocated}
}

// DeliverOrError converts the outcome of a handler into an ABCI response.
func DeliverOrError(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return result.ToABCI()
}

// CheckOrError converts the outcome of a handler into an ABCI response.
func CheckOrError(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return result.ToABCI()
}

// DeliverTxError converts err into a failed DeliverTx response. Unless
// debug is set, errors that were not registered are redacted.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := abciInfo(err, debug, "deliver")
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

// CheckTxError converts err into a failed CheckTx response. Unless debug is
// set, errors that were not registered are redacted.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := abciInfo(err, debug, "check")
	return abci.ResponseCheckTx{Code: code, Log: log}
}

func abciInfo(err error, debug bool, action string) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code == errors.SuccessABCICode {
		return code, log
	}
	return code, fmt.Sprintf("cannot %s tx: %s", action, log)
}
