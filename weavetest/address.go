package weavetest

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/iov-one/lockdrop"
)

var seq uint64

// NewCondition returns a new, unique condition, usable as the signer of a
// test account.
func NewCondition() lockdrop.Condition {
	var data [8]byte
	binary.BigEndian.PutUint64(data[:], atomic.AddUint64(&seq, 1))
	return lockdrop.NewCondition("test", "user", data[:])
}

// NewAddress returns the address of a new, unique condition.
func NewAddress() lockdrop.Address {
	return NewCondition().Address()
}
