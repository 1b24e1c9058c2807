package lockup

import (
	"fmt"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
)

func init() {
	lockdrop.RegisterMsg(&CreateRegistrarMsg{}, "lockup/create_registrar")
	lockdrop.RegisterMsg(&DepositMsg{}, "lockup/deposit")
	lockdrop.RegisterMsg(&WithdrawMsg{}, "lockup/withdraw")
}

// CreateRegistrarMsg creates a registrar accepting deposits of Ticker.
type CreateRegistrarMsg struct {
	Metadata *lockdrop.Metadata `json:"metadata"`
	Admin    lockdrop.Address   `json:"admin"`
	Ticker   string             `json:"ticker"`
}

var _ lockdrop.Msg = (*CreateRegistrarMsg)(nil)

func (CreateRegistrarMsg) Path() string {
	return "lockup/create_registrar"
}

func (m *CreateRegistrarMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Admin", m.Admin.Validate())
	if !coin.IsCC(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrCurrencyMismatch)
	}
	return errs
}

func (m *CreateRegistrarMsg) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(m)
}

func (m *CreateRegistrarMsg) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, m)
}

// DepositMsg locks tokens of the authority in a registrar.
type DepositMsg struct {
	Metadata  *lockdrop.Metadata `json:"metadata"`
	Registrar []byte             `json:"registrar"`
	Authority lockdrop.Address   `json:"authority"`
	Amount    *coin.Coin         `json:"amount"`
	Kind      DepositKind        `json:"kind"`
	EndTs     lockdrop.UnixTime  `json:"end_ts,omitempty"`
	Period    int64              `json:"period,omitempty"`
}

var _ lockdrop.Msg = (*DepositMsg)(nil)

func (DepositMsg) Path() string {
	return "lockup/deposit"
}

func (m *DepositMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.Registrar) == 0 {
		errs = errors.AppendField(errs, "Registrar", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Authority", m.Authority.Validate())
	if m.Amount == nil {
		errs = errors.AppendField(errs, "Amount", errors.ErrEmpty)
		return errs
	}
	return errors.Append(errs, m.Deposit().Validate())
}

// Deposit returns the deposit this message creates.
func (m *DepositMsg) Deposit() Deposit {
	d := Deposit{Kind: m.Kind, EndTs: m.EndTs, Period: m.Period}
	if m.Amount != nil {
		d.Amount = *m.Amount
	}
	return d
}

func (m *DepositMsg) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(m)
}

func (m *DepositMsg) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, m)
}

// WithdrawMsg returns unlocked tokens to the authority.
type WithdrawMsg struct {
	Metadata  *lockdrop.Metadata `json:"metadata"`
	Registrar []byte             `json:"registrar"`
	Authority lockdrop.Address   `json:"authority"`
	Amount    *coin.Coin         `json:"amount"`
}

var _ lockdrop.Msg = (*WithdrawMsg)(nil)

func (WithdrawMsg) Path() string {
	return "lockup/withdraw"
}

func (m *WithdrawMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.Registrar) == 0 {
		errs = errors.AppendField(errs, "Registrar", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Authority", m.Authority.Validate())
	switch {
	case m.Amount == nil:
		errs = errors.AppendField(errs, "Amount", errors.ErrEmpty)
	case !m.Amount.IsPositive():
		errs = errors.AppendField(errs, "Amount", errors.ErrInvalidAmount)
	default:
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	return errs
}

func (m *WithdrawMsg) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(m)
}

func (m *WithdrawMsg) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, m)
}

func (m *DepositMsg) LogFields() []interface{} {
	return []interface{}{"registrar", fmt.Sprintf("%X", m.Registrar), "authority", m.Authority, "kind", m.Kind}
}

func (m *WithdrawMsg) LogFields() []interface{} {
	return []interface{}{"registrar", fmt.Sprintf("%X", m.Registrar), "authority", m.Authority}
}
