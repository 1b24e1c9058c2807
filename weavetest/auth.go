// Package weavetest provides mocks and helpers for tests of lockdrop
// extensions: authenticators, handlers, transactions and a test chain that
// controls block time.
package weavetest

import (
	"context"
	"fmt"

	"github.com/iov-one/lockdrop"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced conditions.
// You can use either Signer or Signers (or both) attributes to reference
// conditions. Each time all signers (regardless which attribute) are
// considered.
type Auth struct {
	// Signer represents an authentication of a single signer.
	Signer lockdrop.Condition
	// Signers represents an authentication of multiple signers.
	Signers []lockdrop.Condition
}

func (a *Auth) GetConditions(lockdrop.Context) []lockdrop.Condition {
	if a.Signer != nil {
		return append(append([]lockdrop.Condition(nil), a.Signers...), a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx lockdrop.Context, addr lockdrop.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve permissions.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context. For
	// convinience only string type keys are allowed.
	Key string
}

func (a *CtxAuth) SetConditions(ctx lockdrop.Context, permissions ...lockdrop.Condition) lockdrop.Context {
	return context.WithValue(ctx, a.Key, permissions)
}

func (a *CtxAuth) GetConditions(ctx lockdrop.Context) []lockdrop.Condition {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	conds, ok := val.([]lockdrop.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []lockdrop.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx lockdrop.Context, addr lockdrop.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
