package weavetest

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iov-one/lockdrop"
)

// ChainID is used by all test chains.
const ChainID = "test-chain"

type fakeClock interface {
	clockwork.Clock
	Advance(time.Duration)
}

// Chain produces block contexts of a test chain. Block time is driven by a
// fake clock, so tests can move between distribution phases.
type Chain struct {
	clock  fakeClock
	height int64
}

// NewChain returns a chain whose first block is produced at the given time.
func NewChain(start time.Time) *Chain {
	return &Chain{
		clock:  clockwork.NewFakeClockAt(start),
		height: 1,
	}
}

// Advance moves the chain forward by one block produced d after the
// current one.
func (c *Chain) Advance(d time.Duration) {
	c.clock.Advance(d)
	c.height++
}

// Now returns the current block time.
func (c *Chain) Now() lockdrop.UnixTime {
	return lockdrop.AsUnixTime(c.clock.Now())
}

// Time returns the current block time.
func (c *Chain) Time() time.Time {
	return c.clock.Now().UTC()
}

// Height returns the current block height.
func (c *Chain) Height() int64 {
	return c.height
}

// Context returns the context of the current block.
func (c *Chain) Context() lockdrop.Context {
	ctx := context.Background()
	ctx = lockdrop.WithHeight(ctx, c.height)
	ctx = lockdrop.WithChainID(ctx, ChainID)
	ctx = lockdrop.WithBlockTime(ctx, c.clock.Now())
	return ctx
}
