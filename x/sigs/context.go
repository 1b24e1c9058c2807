package sigs

import (
	"context"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/x"
)

type contextKey int // local to the sigs module

const (
	contextKeySigners contextKey = iota
)

// withSigners is a private method, as only this module
// can add a signer
func withSigners(ctx lockdrop.Context, signers []lockdrop.Condition) lockdrop.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate reads the conditions of verified signatures from the context.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns who signed the current Context.
// May be empty
func (a Authenticate) GetConditions(ctx lockdrop.Context) []lockdrop.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeySigners).([]lockdrop.Condition)
	return val
}

// HasAddress returns true if the given address signed the current Context.
func (a Authenticate) HasAddress(ctx lockdrop.Context, addr lockdrop.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
