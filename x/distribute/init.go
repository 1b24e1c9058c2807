package distribute

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/gconf"
)

const optKey = "distribute"

// GenesisDistribution declares a distribution created at chain start.
type GenesisDistribution struct {
	Admin             lockdrop.Address  `json:"admin"`
	Registrar         []byte            `json:"registrar"`
	Ticker            string            `json:"ticker"`
	Index             uint64            `json:"index"`
	RegistrationEndTs lockdrop.UnixTime `json:"registration_end_ts"`
	WeightTs          lockdrop.UnixTime `json:"weight_ts"`
}

// Genesis is the distribute section of the genesis file.
type Genesis struct {
	Distributions []GenesisDistribution `json:"distributions"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file. Registrars of genesis distributions are checked against
// the oracle, so its own genesis must be loaded first.
type Initializer struct {
	Oracle WeightOracle
}

var _ lockdrop.Initializer = Initializer{}

// FromGenesis stores the configuration and all declared distributions. A
// genesis without configuration is valid.
func (in Initializer) FromGenesis(opts lockdrop.Options, kv lockdrop.KVStore) error {
	switch err := gconf.InitConfig(kv, opts, packageName, &Configuration{}); {
	case err == nil, errors.ErrNotFound.Is(err):
	default:
		return errors.Wrap(err, "init config")
	}

	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}
	bucket := NewDistributionBucket()
	for i, g := range gen.Distributions {
		if err := in.Oracle.HasRegistrar(kv, g.Registrar); err != nil {
			return errors.Wrapf(err, "distribution #%d registrar", i)
		}
		id := DistributionID(g.Admin, g.Index)
		switch err := bucket.Has(kv, id); {
		case err == nil:
			return errors.Wrapf(errors.ErrDuplicate, "distribution #%d", i)
		case !errors.ErrNotFound.Is(err):
			return errors.Wrapf(err, "distribution #%d", i)
		}
		d := Distribution{
			Metadata:          &lockdrop.Metadata{Schema: 1},
			Admin:             g.Admin,
			Registrar:         g.Registrar,
			Ticker:            g.Ticker,
			Vault:             VaultCondition(id).Address(),
			Index:             g.Index,
			RegistrationEndTs: g.RegistrationEndTs,
			WeightTs:          g.WeightTs,
		}
		d.SetTotalWeight(zeroWeight())
		if _, err := bucket.Put(kv, id, &d); err != nil {
			return errors.Wrapf(err, "distribution #%d", i)
		}
	}
	return nil
}
