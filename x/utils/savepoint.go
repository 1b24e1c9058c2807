package utils

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

// Savepoint runs the rest of the chain on a cache of the store and writes it
// back only if the chain succeeded. A failed claim or registration therefore
// leaves neither the distribution aggregate nor the vault changed.
//
// A new Savepoint is inactive. Enable it per phase with OnCheck and
// OnDeliver.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ lockdrop.Decorator = Savepoint{}

func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck enables the savepoint for CheckTx.
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver enables the savepoint for DeliverTx.
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx, next lockdrop.Checker) (*lockdrop.CheckResult, error) {
	var res *lockdrop.CheckResult
	err := atomically(s.onCheck, store, func(db lockdrop.KVStore) (err error) {
		res, err = next.Check(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx, next lockdrop.Deliverer) (*lockdrop.DeliverResult, error) {
	var res *lockdrop.DeliverResult
	err := atomically(s.onDeliver, store, func(db lockdrop.KVStore) (err error) {
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// atomically calls fn on a cache wrap of store when enabled and the store
// can be wrapped, otherwise on store itself.
func atomically(enabled bool, store lockdrop.KVStore, fn func(lockdrop.KVStore) error) error {
	cstore, ok := store.(lockdrop.CacheableKVStore)
	if !enabled || !ok {
		return fn(store)
	}
	cache := cstore.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "writing savepoint")
	}
	return nil
}
