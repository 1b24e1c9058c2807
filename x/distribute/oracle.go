package distribute

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
)

// WeightOracle reports how much of a voter stake is guaranteed to stay
// locked. Implementations must be deterministic and the returned weight
// must never decrease as now moves towards target.
type WeightOracle interface {
	// GuaranteedLockedWeight returns the weight of the voter that cannot
	// be unlocked before target, as seen at now.
	GuaranteedLockedWeight(db lockdrop.ReadOnlyKVStore, registrar, voter []byte, now, target lockdrop.UnixTime) (uint64, error)
	// VoterAuthority returns the address that controls the voter.
	VoterAuthority(db lockdrop.ReadOnlyKVStore, registrar, voter []byte) (lockdrop.Address, error)
	// HasRegistrar returns an error if the registrar does not exist.
	HasRegistrar(db lockdrop.ReadOnlyKVStore, registrar []byte) error
}

// CashController is the custody this extension needs. It is implemented
// by cash.Controller.
type CashController interface {
	Balance(db lockdrop.ReadOnlyKVStore, addr lockdrop.Address) (coin.Coins, error)
	MoveCoins(db lockdrop.KVStore, src, dest lockdrop.Address, amount coin.Coin) error
}
