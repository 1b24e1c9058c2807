package cash

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
)

func init() {
	lockdrop.RegisterMsg(&SendMsg{}, "cash/send")
}

// SendMsg moves coins between two wallets. The source must sign.
type SendMsg struct {
	Metadata    *lockdrop.Metadata `json:"metadata"`
	Source      lockdrop.Address   `json:"source"`
	Destination lockdrop.Address   `json:"destination"`
	Amount      *coin.Coin         `json:"amount"`
	Memo        string             `json:"memo,omitempty"`
}

var _ lockdrop.Msg = (*SendMsg)(nil)

const maxMemoSize int = 128

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible
func (s *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", s.Metadata.Validate())
	if coin.IsEmpty(s.Amount) || !s.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrInvalidAmount)
	} else {
		errs = errors.AppendField(errs, "Amount", s.Amount.Validate())
	}
	errs = errors.AppendField(errs, "Source", s.Source.Validate())
	errs = errors.AppendField(errs, "Destination", s.Destination.Validate())
	if len(s.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInvalidInput)
	}
	return errs
}

func (s *SendMsg) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(s)
}

func (s *SendMsg) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, s)
}
