package cash

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file
// use lockdrop.Address, so address in hex, not base64
type GenesisAccount struct {
	Address lockdrop.Address `json:"address"`
	Coins   coin.Coins       `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ lockdrop.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts lockdrop.Options, kv lockdrop.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	bucket := NewWalletBucket()
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
		coins, err := coin.NormalizeCoins(acct.Coins)
		if err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
		set := Set{Metadata: &lockdrop.Metadata{Schema: 1}, Coins: coins}
		if _, err := bucket.Put(kv, acct.Address, &set); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
	}
	return nil
}
