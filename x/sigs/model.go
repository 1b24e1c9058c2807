package sigs

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/crypto"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// UserData is the signing state of a single public key.
type UserData struct {
	Metadata *lockdrop.Metadata `json:"metadata"`
	Pubkey   *crypto.PublicKey  `json:"pubkey"`
	Sequence int64              `json:"sequence"`
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", u.Metadata.Validate())
	if u.Pubkey == nil {
		errs = errors.AppendField(errs, "Pubkey", errors.ErrEmpty)
	}
	if u.Sequence < 0 {
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	}
	return errs
}

func (u *UserData) Copy() orm.Model {
	return &UserData{
		Metadata: u.Metadata.Copy(),
		Pubkey:   u.Pubkey,
		Sequence: u.Sequence,
	}
}

func (u *UserData) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(u)
}

func (u *UserData) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, u)
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}

	next := u.Sequence + 1

	// Clients keep the nonce in a double, so anything past
	// Number.MAX_SAFE_INTEGER = 2^53 - 1 cannot be signed anyway.
	const maxSequenceValue = (1 << 53) - 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// UserBucket stores UserData keyed by the address of the public key.
type UserBucket struct {
	orm.ModelBucket
}

// NewUserBucket creates the proper bucket for this extension
func NewUserBucket() UserBucket {
	return UserBucket{
		ModelBucket: orm.NewModelBucket(BucketName, &UserData{}),
	}
}

// GetOrCreate loads the user data of given key. A key seen for the first
// time starts with sequence zero and is not persisted until Put is called.
func (b UserBucket) GetOrCreate(db lockdrop.ReadOnlyKVStore, pubkey *crypto.PublicKey) (*UserData, error) {
	var u UserData
	switch err := b.One(db, pubkey.Address(), &u); {
	case err == nil:
		return &u, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{
			Metadata: &lockdrop.Metadata{Schema: 1},
			Pubkey:   pubkey,
		}, nil
	default:
		return nil, err
	}
}
