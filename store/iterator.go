package store

import (
	"bytes"

	"github.com/google/btree"
)

// ascendBtree collects all cached items within [start, end) in ascending
// order. A snapshot is taken so that writes during the iteration do not
// affect it.
func ascendBtree(bt *btree.BTree, start, end []byte) []btree.Item {
	var items []btree.Item
	collect := func(i btree.Item) bool {
		items = append(items, i)
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return items
}

// descendBtree is ascendBtree in reverse.
func descendBtree(bt *btree.BTree, start, end []byte) []btree.Item {
	items := ascendBtree(bt, start, end)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// source marks where the current item comes from
type source int32

const (
	us source = iota
	parent
	both
	none
)

// mergedIterator combines the cached items with the results of the parent
// store, taking into consideration overwrites and deletes.
type mergedIterator struct {
	cached    []btree.Item
	idx       int
	parent    Iterator
	ascending bool
}

var _ Iterator = (*mergedIterator)(nil)

func newMergedIterator(cached []btree.Item, parent Iterator, ascending bool) (*mergedIterator, error) {
	it := &mergedIterator{
		cached:    cached,
		parent:    parent,
		ascending: ascending,
	}
	if err := it.skipAllDeleted(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

// Valid implements Iterator and returns true iff it can be read
func (i *mergedIterator) Valid() bool {
	return i.cachedValid() || i.parentValid()
}

// Next moves the iterator to the next sequential key in the database, as
// defined by order of iteration.
//
// If Valid returns false, this method will panic.
func (i *mergedIterator) Next() error {
	// advance either us, parent, or both
	switch i.firstKey() {
	case us:
		i.idx++
	case both:
		i.idx++
		if err := i.parent.Next(); err != nil {
			return err
		}
	case parent:
		if err := i.parent.Next(); err != nil {
			return err
		}
	default:
		panic("Advanced past the end!")
	}

	// keep advancing over all deleted entries
	return i.skipAllDeleted()
}

// Key returns the key of the cursor.
func (i *mergedIterator) Key() []byte {
	switch i.firstKey() {
	case us, both:
		return i.current().Key()
	case parent:
		return i.parent.Key()
	default:
		panic("Advanced past the end!")
	}
}

// Value returns the value of the cursor.
func (i *mergedIterator) Value() []byte {
	switch i.firstKey() {
	case us, both:
		return i.current().(setItem).value
	case parent:
		return i.parent.Value()
	default:
		panic("Advanced past the end!")
	}
}

// Close releases the Iterator.
func (i *mergedIterator) Close() {
	if i.parent != nil {
		i.parent.Close()
	}
	i.cached = nil
}

// skipAllDeleted loops and skips any number of deleted items
func (i *mergedIterator) skipAllDeleted() error {
	for {
		skipped, err := i.skipDeleted()
		if err != nil || !skipped {
			return err
		}
	}
}

// skipDeleted jumps over a deleted element. Returns true if an element was
// skipped, so we can try again.
func (i *mergedIterator) skipDeleted() (bool, error) {
	src := i.firstKey()
	if src != us && src != both {
		return false, nil
	}
	if _, ok := i.current().(deletedItem); !ok {
		return false, nil
	}
	i.idx++
	// if parent had the same key, advance parent as well
	if src == both {
		if err := i.parent.Next(); err != nil {
			return false, err
		}
	}
	return true, nil
}

// firstKey selects the iterator with the next key in order, if any
func (i *mergedIterator) firstKey() source {
	// if only one or none is valid, it is clear which to use
	if !i.parentValid() {
		if !i.cachedValid() {
			return none
		}
		return us
	} else if !i.cachedValid() {
		return parent
	}

	cmp := bytes.Compare(i.parent.Key(), i.current().Key())
	if !i.ascending {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return parent
	case cmp > 0:
		return us
	default:
		return both
	}
}

func (i *mergedIterator) current() keyer {
	return i.cached[i.idx].(keyer)
}

func (i *mergedIterator) cachedValid() bool {
	return i.idx < len(i.cached)
}

// makes sure the parent is non-nil before checking if it is valid
func (i *mergedIterator) parentValid() bool {
	return (i.parent != nil) && i.parent.Valid()
}
