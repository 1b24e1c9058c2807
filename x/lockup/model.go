package lockup

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/orm"
)

// maxDeposits limits how many deposits a single voter can hold, so that
// weight computation stays bounded.
const maxDeposits = 32

// Registrar accepts deposits of a single ticker.
type Registrar struct {
	Metadata *lockdrop.Metadata `json:"metadata"`
	Admin    lockdrop.Address   `json:"admin"`
	Ticker   string             `json:"ticker"`
}

var _ orm.Model = (*Registrar)(nil)

func (r *Registrar) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", r.Metadata.Validate())
	errs = errors.AppendField(errs, "Admin", r.Admin.Validate())
	if !coin.IsCC(r.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrCurrencyMismatch)
	}
	return errs
}

func (r *Registrar) Copy() orm.Model {
	return &Registrar{
		Metadata: r.Metadata.Copy(),
		Admin:    r.Admin,
		Ticker:   r.Ticker,
	}
}

func (r *Registrar) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(r)
}

func (r *Registrar) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, r)
}

// DepositKind tells how a deposit unlocks.
type DepositKind int32

const (
	// Cliff deposits are locked until EndTs and fully unlocked after.
	Cliff DepositKind = 1
	// Constant deposits are always Period seconds away from unlocking.
	Constant DepositKind = 2
)

func (k DepositKind) String() string {
	switch k {
	case Cliff:
		return "cliff"
	case Constant:
		return "constant"
	default:
		return "unknown"
	}
}

// Deposit is a single lockup of a voter.
type Deposit struct {
	Amount coin.Coin         `json:"amount"`
	Kind   DepositKind       `json:"kind"`
	EndTs  lockdrop.UnixTime `json:"end_ts,omitempty"`
	Period int64             `json:"period,omitempty"`
}

func (d Deposit) Validate() error {
	if err := d.Amount.Validate(); err != nil {
		return errors.Field("Amount", err, "invalid amount")
	}
	if !d.Amount.IsPositive() {
		return errors.Field("Amount", errors.ErrInvalidAmount, "must be positive")
	}
	switch d.Kind {
	case Cliff:
		if d.EndTs <= 0 {
			return errors.Field("EndTs", errors.ErrInvalidInput, "cliff deposit requires an end")
		}
		if d.Period != 0 {
			return errors.Field("Period", errors.ErrInvalidInput, "cliff deposit has no period")
		}
	case Constant:
		if d.Period <= 0 {
			return errors.Field("Period", errors.ErrInvalidInput, "constant deposit requires a period")
		}
		if d.EndTs != 0 {
			return errors.Field("EndTs", errors.ErrInvalidInput, "constant deposit has no end")
		}
	default:
		return errors.Field("Kind", ErrDepositKind, d.Kind.String())
	}
	return nil
}

// LockedThrough returns true if the deposit is certain to still be locked
// at target, as seen at now. A constant deposit could start unlocking right
// now at the latest, so it is locked until now + Period.
func (d Deposit) LockedThrough(now, target lockdrop.UnixTime) bool {
	switch d.Kind {
	case Cliff:
		return target < d.EndTs
	case Constant:
		return target < now.AddSeconds(d.Period)
	}
	return false
}

// Unlocked returns true if the deposit can be withdrawn at now.
func (d Deposit) Unlocked(now lockdrop.UnixTime) bool {
	return d.Kind == Cliff && d.EndTs <= now
}

// Voter holds all deposits an authority made into a registrar.
type Voter struct {
	Metadata  *lockdrop.Metadata `json:"metadata"`
	Registrar []byte             `json:"registrar"`
	Authority lockdrop.Address   `json:"authority"`
	Deposits  []Deposit          `json:"deposits"`
}

var _ orm.Model = (*Voter)(nil)

func (v *Voter) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", v.Metadata.Validate())
	if len(v.Registrar) == 0 {
		errs = errors.AppendField(errs, "Registrar", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Authority", v.Authority.Validate())
	if len(v.Deposits) > maxDeposits {
		errs = errors.AppendField(errs, "Deposits", errors.ErrInvalidState)
	}
	for _, d := range v.Deposits {
		errs = errors.AppendField(errs, "Deposits", d.Validate())
	}
	return errs
}

func (v *Voter) Copy() orm.Model {
	return &Voter{
		Metadata:  v.Metadata.Copy(),
		Registrar: append([]byte(nil), v.Registrar...),
		Authority: v.Authority,
		Deposits:  append([]Deposit(nil), v.Deposits...),
	}
}

func (v *Voter) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(v)
}

func (v *Voter) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, v)
}

// GuaranteedWeight sums the whole units of all deposits that stay locked
// through target as seen at now.
func (v *Voter) GuaranteedWeight(now, target lockdrop.UnixTime) (uint64, error) {
	var total uint64
	for _, d := range v.Deposits {
		if !d.LockedThrough(now, target) {
			continue
		}
		next := total + uint64(d.Amount.Whole)
		if next < total {
			return 0, errors.Wrap(errors.ErrOverflow, "weight")
		}
		total = next
	}
	return total, nil
}

// Withdrawable returns the amount of unlocked deposits at now.
func (v *Voter) Withdrawable(now lockdrop.UnixTime, ticker string) (coin.Coin, error) {
	total := coin.Coin{Ticker: ticker}
	for _, d := range v.Deposits {
		if !d.Unlocked(now) {
			continue
		}
		var err error
		if total, err = total.Add(d.Amount); err != nil {
			return coin.Coin{}, err
		}
	}
	return total, nil
}

// withdraw consumes unlocked deposits, oldest first, until amount is
// covered. Deposits that are fully consumed are removed.
func (v *Voter) withdraw(now lockdrop.UnixTime, amount coin.Coin) error {
	available, err := v.Withdrawable(now, amount.Ticker)
	if err != nil {
		return err
	}
	if !available.IsGTE(amount) {
		return errors.Wrapf(ErrLocked, "only %s is unlocked", available)
	}

	remaining := amount
	kept := v.Deposits[:0]
	for _, d := range v.Deposits {
		if !d.Unlocked(now) || remaining.IsZero() {
			kept = append(kept, d)
			continue
		}
		if d.Amount.IsGTE(remaining) {
			rest, err := d.Amount.Subtract(remaining)
			if err != nil {
				return err
			}
			remaining = coin.Coin{Ticker: amount.Ticker}
			if rest.IsPositive() {
				d.Amount = rest
				kept = append(kept, d)
			}
			continue
		}
		if remaining, err = remaining.Subtract(d.Amount); err != nil {
			return err
		}
	}
	v.Deposits = kept
	return nil
}

// VoterID returns the key of the voter of given authority in a registrar.
func VoterID(registrarID []byte, authority lockdrop.Address) []byte {
	id := make([]byte, 0, len(registrarID)+len(authority))
	id = append(id, registrarID...)
	return append(id, authority...)
}

// VaultCondition returns the condition controlling the tokens deposited
// into a registrar.
func VaultCondition(registrarID []byte) lockdrop.Condition {
	return lockdrop.NewCondition("lockup", "vault", registrarID)
}

// NewRegistrarBucket returns a bucket for registrars. Registrars are
// keyed by a sequence.
func NewRegistrarBucket() orm.ModelBucket {
	return orm.NewModelBucket("registrar", &Registrar{})
}

// NewVoterBucket returns a bucket for voters, keyed by VoterID.
func NewVoterBucket() orm.ModelBucket {
	return orm.NewModelBucket("voter", &Voter{},
		orm.WithIndex("authority", voterAuthority, false))
}

func voterAuthority(obj orm.Object) ([]byte, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	v, ok := obj.Value().(*Voter)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "not a voter: %T", obj.Value())
	}
	return v.Authority, nil
}
