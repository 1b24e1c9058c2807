package orm

import (
	"bytes"
	"sort"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

// MultiRef is a sorted set of primary keys stored under a single index
// entry.
type MultiRef struct {
	Refs [][]byte
}

var _ Model = (*MultiRef)(nil)

// Add inserts this reference in the multiref, sorted by order.
// Returns an error if already there
func (m *MultiRef) Add(ref []byte) error {
	i, found := m.findRef(ref)
	if found {
		return errors.Wrap(errors.ErrDuplicate, "ref already in set")
	}
	m.Refs = append(m.Refs, nil)
	copy(m.Refs[i+1:], m.Refs[i:])
	m.Refs[i] = ref
	return nil
}

// Remove removes this reference from the multiref.
// Returns an error if not there
func (m *MultiRef) Remove(ref []byte) error {
	i, found := m.findRef(ref)
	if !found {
		return errors.Wrap(errors.ErrNotFound, "ref not in set")
	}
	m.Refs = append(m.Refs[:i], m.Refs[i+1:]...)
	return nil
}

// findRef returns the position of the ref, or where it should be inserted.
func (m *MultiRef) findRef(ref []byte) (int, bool) {
	i := sort.Search(len(m.Refs), func(i int) bool {
		return bytes.Compare(m.Refs[i], ref) >= 0
	})
	return i, i < len(m.Refs) && bytes.Equal(m.Refs[i], ref)
}

// Validate requires all references to be non empty.
func (m *MultiRef) Validate() error {
	for _, r := range m.Refs {
		if len(r) == 0 {
			return errors.Wrap(errors.ErrEmpty, "ref")
		}
	}
	return nil
}

// Copy returns a deep copy.
func (m *MultiRef) Copy() Model {
	refs := make([][]byte, len(m.Refs))
	for i, r := range m.Refs {
		refs[i] = append([]byte(nil), r...)
	}
	return &MultiRef{Refs: refs}
}

func (m *MultiRef) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(m)
}

func (m *MultiRef) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, m)
}
