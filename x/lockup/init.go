package lockup

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

const optKey = "lockup"

// Genesis is the lockup section of the genesis file.
type Genesis struct {
	Registrars []GenesisRegistrar `json:"registrars"`
}

// GenesisRegistrar creates a registrar. Registrars receive sequential IDs
// in the order they are listed.
type GenesisRegistrar struct {
	Admin  lockdrop.Address `json:"admin"`
	Ticker string           `json:"ticker"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ lockdrop.Initializer = Initializer{}

// FromGenesis stores all registrars declared in the genesis file.
func (Initializer) FromGenesis(opts lockdrop.Options, kv lockdrop.KVStore) error {
	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}
	bucket := NewRegistrarBucket()
	for i, r := range gen.Registrars {
		registrar := Registrar{
			Metadata: &lockdrop.Metadata{Schema: 1},
			Admin:    r.Admin,
			Ticker:   r.Ticker,
		}
		if _, err := bucket.Put(kv, nil, &registrar); err != nil {
			return errors.Wrapf(err, "registrar #%d", i)
		}
	}
	return nil
}
