package cash

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
)

// Controller is the functionality needed by cash.Handler and other
// extensions to move money around.
type Controller interface {
	Balance(lockdrop.ReadOnlyKVStore, lockdrop.Address) (coin.Coins, error)
	MoveCoins(db lockdrop.KVStore, src, dest lockdrop.Address, amount coin.Coin) error
	IssueCoins(db lockdrop.KVStore, dest lockdrop.Address, amount coin.Coin) error
}

// BaseController is a simple implementation of controller wallet is used to
// store coins.
type BaseController struct {
	bucket WalletBucket
}

var _ Controller = BaseController{}

// NewController returns base controller implementation.
func NewController(bucket WalletBucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the amount of funds stored under given account address.
func (c BaseController) Balance(db lockdrop.ReadOnlyKVStore, addr lockdrop.Address) (coin.Coins, error) {
	return c.bucket.Balance(db, addr)
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db lockdrop.KVStore, src, dest lockdrop.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "non-positive amount %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}

	balance, err := c.bucket.Balance(db, src)
	if err != nil {
		return errors.Wrap(err, "source balance")
	}
	if balance.IsEmpty() {
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	}
	if !balance.Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s holds less than %s", src, amount)
	}

	if err := c.bucket.Add(db, src, amount.Negative()); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := c.bucket.Add(db, dest, amount); err != nil {
		return errors.Wrap(err, "destination")
	}
	return nil
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
//
// Note the amount may also be negative:
// "the lord giveth and the lord taketh away"
func (c BaseController) IssueCoins(db lockdrop.KVStore, dest lockdrop.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	return c.bucket.Add(db, dest, amount)
}
