package app

import (
	"github.com/iov-one/lockdrop"
)

// ChainInitializers lets you initialize many extensions with one function.
// Initializers are called in the order given, so an extension can rely on
// the state created by the ones before it.
func ChainInitializers(inits ...lockdrop.Initializer) lockdrop.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []lockdrop.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts lockdrop.Options, kv lockdrop.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
