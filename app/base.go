package app

import (
	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

// BaseApp adds DeliverTx and CheckTx to the storage and query functionality
// of StoreApp. Every transaction is decoded and handed to a single handler,
// usually a decorator chain ending in a Router.
type BaseApp struct {
	*StoreApp
	decoder lockdrop.TxDecoder
	handler lockdrop.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application. In debug mode error
// responses carry the full error instead of the redacted one.
func NewBaseApp(store *StoreApp, decoder lockdrop.TxDecoder, handler lockdrop.Handler, debug bool) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

// DeliverTx - ABCI
func (b BaseApp) DeliverTx(raw []byte) abci.ResponseDeliverTx {
	tx, ctx, err := b.prepare(raw, "deliver_tx")
	if err != nil {
		return lockdrop.DeliverTxError(err, b.debug)
	}
	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return lockdrop.DeliverOrError(res, err, b.debug)
}

// CheckTx - ABCI
func (b BaseApp) CheckTx(raw []byte) abci.ResponseCheckTx {
	tx, ctx, err := b.prepare(raw, "check_tx")
	if err != nil {
		return lockdrop.CheckTxError(err, b.debug)
	}
	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return lockdrop.CheckOrError(res, err, b.debug)
}

// prepare decodes raw and returns the block context tagged with the ABCI
// call. A panicking decoder is reported as ErrPanic.
func (b BaseApp) prepare(raw []byte, call string) (tx lockdrop.Tx, ctx lockdrop.Context, err error) {
	ctx = lockdrop.WithLogInfo(b.BlockContext(), "call", call)
	defer func() {
		if err != nil {
			lockdrop.GetLogger(ctx).Debug("cannot decode transaction", "size", len(raw), "err", err)
		}
	}()
	defer errors.Recover(&err)
	tx, err = b.decoder(raw)
	return tx, ctx, err
}
