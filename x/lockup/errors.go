package lockup

import "github.com/iov-one/lockdrop/errors"

// x/lockup reserves 210 ~ 219.
var (
	ErrLocked      = errors.Register(210, "funds are locked")
	ErrDepositKind = errors.Register(211, "invalid deposit kind")
)
