package lockup

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/orm"
)

// Oracle reports locked weight of voters. Voters are referenced by their
// VoterID.
type Oracle struct {
	registrars orm.ModelBucket
	voters     orm.ModelBucket
}

// NewOracle returns an oracle reading the lockup buckets.
func NewOracle() Oracle {
	return Oracle{
		registrars: NewRegistrarBucket(),
		voters:     NewVoterBucket(),
	}
}

// HasRegistrar returns ErrNotFound if the registrar does not exist.
func (o Oracle) HasRegistrar(db lockdrop.ReadOnlyKVStore, registrar []byte) error {
	return o.registrars.Has(db, registrar)
}

// VoterAuthority returns the address that controls the voter.
func (o Oracle) VoterAuthority(db lockdrop.ReadOnlyKVStore, registrar, voter []byte) (lockdrop.Address, error) {
	v, err := o.voter(db, registrar, voter)
	if err != nil {
		return nil, err
	}
	return v.Authority, nil
}

// GuaranteedLockedWeight returns the whole token units of the voter that
// cannot be unlocked before target, as seen at now. The value never
// decreases as now moves towards target.
func (o Oracle) GuaranteedLockedWeight(db lockdrop.ReadOnlyKVStore, registrar, voter []byte, now, target lockdrop.UnixTime) (uint64, error) {
	if target < now {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "target %d before now %d", target, now)
	}
	v, err := o.voter(db, registrar, voter)
	if err != nil {
		return 0, err
	}
	return v.GuaranteedWeight(now, target)
}

func (o Oracle) voter(db lockdrop.ReadOnlyKVStore, registrar, voter []byte) (*Voter, error) {
	if err := o.registrars.Has(db, registrar); err != nil {
		return nil, errors.Wrap(err, "registrar")
	}
	var v Voter
	if err := o.voters.One(db, voter, &v); err != nil {
		return nil, errors.Wrap(err, "voter")
	}
	if string(v.Registrar) != string(registrar) {
		return nil, errors.Wrap(errors.ErrInvalidInput, "voter belongs to another registrar")
	}
	return &v, nil
}
