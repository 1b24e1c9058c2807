package utils

import (
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/lockdrop"
)

// Loggable is implemented by messages that name the records they act on.
// LogFields returns key value pairs added to the transaction log entry.
type Loggable interface {
	LogFields() []interface{}
}

// Logging writes one entry per transaction with the message path, the
// records named by the message and the processing time. Failures are logged
// as errors. Successful deliveries are info and successful checks debug.
type Logging struct{}

var _ lockdrop.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx, next lockdrop.Checker) (*lockdrop.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	entry := newTxEntry(ctx, tx, start, err)
	switch {
	case err != nil:
		entry.Error("check failed")
	default:
		entry.Debug(nonEmpty(res.Log, "checked"))
	}
	return res, err
}

func (Logging) Deliver(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx, next lockdrop.Deliverer) (*lockdrop.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	entry := newTxEntry(ctx, tx, start, err)
	switch {
	case err != nil:
		entry.Error("deliver failed")
	default:
		entry.Info(nonEmpty(res.Log, "delivered"))
	}
	return res, err
}

func newTxEntry(ctx lockdrop.Context, tx lockdrop.Tx, start time.Time, err error) log.Logger {
	keyvals := txFields(tx)
	keyvals = append(keyvals, "duration", time.Since(start)/time.Microsecond)
	if err != nil {
		keyvals = append(keyvals, "err", err)
	}
	return lockdrop.GetLogger(ctx).With(keyvals...)
}

// txFields describes the message of tx. A transaction without a readable
// message is still described by its path placeholder.
func txFields(tx lockdrop.Tx) []interface{} {
	if tx == nil {
		return []interface{}{"path", "(missing)"}
	}
	keyvals := []interface{}{"path", lockdrop.GetPath(tx)}
	msg, err := tx.GetMsg()
	if err != nil {
		return keyvals
	}
	if l, ok := msg.(Loggable); ok {
		keyvals = append(keyvals, l.LogFields()...)
	}
	return keyvals
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
