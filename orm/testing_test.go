package orm

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/store"
)

// counter is a model used only in tests.
type counter struct {
	Owner []byte
	Count int64
}

var _ Model = (*counter)(nil)

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Field("Count", errors.ErrInvalidState, "negative")
	}
	return nil
}

func (c *counter) Copy() Model {
	cpy := *c
	cpy.Owner = append([]byte(nil), c.Owner...)
	return &cpy
}

func (c *counter) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(c)
}

func (c *counter) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, c)
}

func ownerIndexer(obj Object) ([]byte, error) {
	c, ok := obj.Value().(*counter)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidModel, "%T", obj.Value())
	}
	return c.Owner, nil
}

func newStore() lockdrop.KVStore {
	return store.MemStore()
}
