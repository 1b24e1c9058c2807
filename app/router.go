package app

import (
	"fmt"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

// Router dispatches a transaction to the handler registered for the path
// of its message.
type Router struct {
	routes map[string]lockdrop.Handler
}

var _ lockdrop.Registry = (*Router)(nil)
var _ lockdrop.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]lockdrop.Handler),
	}
}

// Handle registers a handler for the path of given message. It panics if
// the path is malformed or a handler is already registered for it.
func (r *Router) Handle(msg lockdrop.Msg, h lockdrop.Handler) {
	path := msg.Path()
	if err := lockdrop.ValidatePath(path); err != nil {
		panic(err)
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the handler registered for given path.
func (r *Router) Handler(path string) (lockdrop.Handler, error) {
	h, ok := r.routes[path]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", path)
	}
	return h, nil
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	h, err := r.Handler(msg.Path())
	if err != nil {
		return nil, err
	}
	return h.Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	h, err := r.Handler(msg.Path())
	if err != nil {
		return nil, err
	}
	return h.Deliver(ctx, store, tx)
}
