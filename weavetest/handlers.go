package weavetest

import "github.com/iov-one/lockdrop"

// Handler is a mock counting its calls and returning the configured
// results.
type Handler struct {
	checkCall   int
	CheckResult lockdrop.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult lockdrop.DeliverResult
	DeliverErr    error
}

var _ lockdrop.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// WriteHandler is a mock writing a key to the store before returning the
// configured error. Use it to test that failed calls leave no writes behind.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ lockdrop.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &lockdrop.CheckResult{}, nil
}

func (h *WriteHandler) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &lockdrop.DeliverResult{}, nil
}

// Decorator is a mock counting its calls. It always calls the next handler.
type Decorator struct {
	checkCall   int
	deliverCall int
}

var _ lockdrop.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx, next lockdrop.Checker) (*lockdrop.CheckResult, error) {
	d.checkCall++
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx, next lockdrop.Deliverer) (*lockdrop.DeliverResult, error) {
	d.deliverCall++
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}
