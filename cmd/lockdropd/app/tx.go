package lockdropd

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/x/sigs"
)

// Tx is the transaction envelope accepted by the lockdrop node. It carries
// exactly one message and the signatures authorizing it.
type Tx struct {
	Msg        lockdrop.Msg         `json:"msg"`
	Signatures []*sigs.StdSignature `json:"signatures"`
}

var _ lockdrop.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (lockdrop.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

func (tx *Tx) GetMsg() (lockdrop.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrInvalidMsg, "no message")
	}
	return tx.Msg, nil
}

func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign...
func (tx *Tx) GetSignBytes() ([]byte, error) {
	// the sign bytes come from the message alone, never from
	// previous signatures
	unsigned := Tx{Msg: tx.Msg}
	return unsigned.Marshal()
}

func (tx *Tx) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(tx)
}

func (tx *Tx) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, tx)
}
