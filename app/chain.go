package app

import (
	"reflect"

	"github.com/iov-one/lockdrop"
)

// Decorators is a chain of decorators waiting for the final handler.
type Decorators struct {
	chain []lockdrop.Decorator
}

/*
ChainDecorators builds a chain that is resolved into a Handler by
WithHandler. Decorators run in the given order, the first one sees the
transaction first. The node uses

	app.ChainDecorators(
	  utils.NewLogging(),
	  utils.NewRecovery(),
	  utils.NewMetrics(...),
	  utils.NewActionTagger(),
	  utils.NewSavepoint().OnCheck(),
	  sigs.NewDecorator(),
	  utils.NewSavepoint().OnDeliver(),
	).WithHandler(router)

Nil decorators are skipped, so optional ones can be passed unconditionally.
*/
func ChainDecorators(chain ...lockdrop.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a new chain with the decorators appended. The receiver is
// not modified.
func (d Decorators) Chain(chain ...lockdrop.Decorator) Decorators {
	next := make([]lockdrop.Decorator, 0, len(d.chain)+len(chain))
	next = append(next, d.chain...)
	for _, dec := range chain {
		if !isNil(dec) {
			next = append(next, dec)
		}
	}
	return Decorators{chain: next}
}

func isNil(d lockdrop.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler resolves the chain into a Handler calling h last.
func (d Decorators) WithHandler(h lockdrop.Handler) lockdrop.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = decorated{decorator: d.chain[i], next: h}
	}
	return h
}

// decorated is a handler that runs the decorator around next.
type decorated struct {
	decorator lockdrop.Decorator
	next      lockdrop.Handler
}

var _ lockdrop.Handler = decorated{}

func (d decorated) Check(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	return d.decorator.Check(ctx, store, tx, d.next)
}

func (d decorated) Deliver(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	return d.decorator.Deliver(ctx, store, tx, d.next)
}
