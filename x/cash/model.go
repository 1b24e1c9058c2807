package cash

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Set is the balance of a single wallet.
type Set struct {
	Metadata *lockdrop.Metadata `json:"metadata"`
	Coins    coin.Coins         `json:"coins"`
}

var _ orm.Model = (*Set)(nil)

// Validate requires that all coins are in alphabetical order.
func (s *Set) Validate() error {
	if err := s.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := s.Coins.Validate(); err != nil {
		return errors.Wrap(err, "coins")
	}
	if !s.Coins.IsNonNegative() {
		return errors.Wrap(errors.ErrInsufficientAmount, "negative balance")
	}
	return nil
}

// Copy makes a new set with the same coins
func (s *Set) Copy() orm.Model {
	return &Set{
		Metadata: s.Metadata.Copy(),
		Coins:    s.Coins.Clone(),
	}
}

func (s *Set) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(s)
}

func (s *Set) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, s)
}

// WalletBucket is a type-safe wrapper around orm.ModelBucket. Wallets are
// keyed by their owner address.
type WalletBucket struct {
	orm.ModelBucket
}

// NewWalletBucket initializes a WalletBucket with default name
func NewWalletBucket() WalletBucket {
	return WalletBucket{
		ModelBucket: orm.NewModelBucket(BucketName, &Set{}),
	}
}

// Balance returns the coins held by given address. A missing wallet holds
// nothing.
func (b WalletBucket) Balance(db lockdrop.ReadOnlyKVStore, addr lockdrop.Address) (coin.Coins, error) {
	var s Set
	switch err := b.One(db, addr, &s); {
	case err == nil:
		return s.Coins, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// Add increases the balance of given address. The amount may be negative.
func (b WalletBucket) Add(db lockdrop.KVStore, addr lockdrop.Address, amount coin.Coin) error {
	coins, err := b.Balance(db, addr)
	if err != nil {
		return errors.Wrap(err, "balance")
	}
	coins, err = coins.Clone().Add(amount)
	if err != nil {
		return err
	}
	set := Set{Metadata: &lockdrop.Metadata{Schema: 1}, Coins: coins}
	_, err = b.Put(db, addr, &set)
	return err
}
