package orm

import (
	"reflect"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

// record binds a model to the key it is stored under. Model buckets use it
// internally so that callers only ever deal with models and their IDs.
type record struct {
	key   []byte
	value Model
}

var _ Object = (*record)(nil)

func newRecord(key []byte, value Model) *record {
	return &record{key: key, value: value}
}

func (r record) Value() lockdrop.Persistent { return r.value }

func (r record) Key() []byte { return r.key }

func (r *record) SetKey(key []byte) { r.key = key }

// Validate rejects records without a key or a value and then defers to the
// model.
func (r record) Validate() error {
	switch {
	case len(r.key) == 0:
		return errors.Field("Key", errors.ErrEmpty, "missing key")
	case r.value == nil:
		return errors.Field("Value", errors.ErrEmpty, "missing value")
	}
	return errors.Field("Value", r.value.Validate(), "invalid value")
}

// Clone returns a record holding a zero model of the same type, ready to be
// unmarshalled into. The key is copied.
func (r *record) Clone() Object {
	zero := reflect.New(reflect.TypeOf(r.value).Elem()).Interface().(Model)
	c := &record{value: zero}
	if len(r.key) != 0 {
		c.key = append([]byte(nil), r.key...)
	}
	return c
}
