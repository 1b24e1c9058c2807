package utils

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

// Recovery turns a panic of any handler below it into an ErrPanic. The panic
// is logged together with the message that caused it, because the error
// itself is redacted before it reaches the client.
type Recovery struct{}

var _ lockdrop.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx, next lockdrop.Checker) (_ *lockdrop.CheckResult, err error) {
	defer recoverTx(ctx, tx, &err)
	return next.Check(ctx, store, tx)
}

func (Recovery) Deliver(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx, next lockdrop.Deliverer) (_ *lockdrop.DeliverResult, err error) {
	defer recoverTx(ctx, tx, &err)
	return next.Deliver(ctx, store, tx)
}

// recoverTx must be deferred directly.
func recoverTx(ctx lockdrop.Context, tx lockdrop.Tx, err *error) {
	r := recover()
	if r == nil {
		return
	}
	*err = errors.Wrapf(errors.ErrPanic, "%v", r)
	keyvals := append(txFields(tx), "panic", r)
	lockdrop.GetLogger(ctx).Error("transaction panicked", keyvals...)
}
