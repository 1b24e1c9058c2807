package distribute

import "github.com/iov-one/lockdrop/errors"

// x/distribute reserves 200 ~ 209.
var (
	ErrTooLateToRegister = errors.Register(200, "registration phase is over")
	ErrNotInClaimPhase   = errors.Register(201, "not in claim phase")
	ErrWeightTime        = errors.Register(202, "weight time before registration end")
	ErrOracle            = errors.Register(203, "weight oracle failure")
	ErrNoLockedWeight    = errors.Register(204, "no locked weight")
	ErrWeightDecrease    = errors.Register(205, "participant weight cannot decrease")
)
