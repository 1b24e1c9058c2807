package orm

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

// RegisterQuery exposes the raw store under "/". Data is the full database
// key, or a key prefix when the "prefix" modifier is used.
func RegisterQuery(qr lockdrop.QueryRouter) {
	qr.Register("/", rawQuery{})
}

type rawQuery struct{}

func (rawQuery) Query(db lockdrop.ReadOnlyKVStore, mod string, data []byte) ([]lockdrop.Model, error) {
	switch mod {
	case lockdrop.KeyQueryMod:
		value, err := db.Get(data)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
		return []lockdrop.Model{lockdrop.Pair(data, value)}, nil
	case lockdrop.PrefixQueryMod:
		return queryPrefix(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown query mod %q", mod)
	}
}

// queryPrefix returns all models whose key starts with the prefix.
func queryPrefix(db lockdrop.ReadOnlyKVStore, prefix []byte) ([]lockdrop.Model, error) {
	itr, err := db.Iterator(prefix, prefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	return consumeIterator(itr)
}

// consumeIterator will read all remaining data into an
// array and close the iterator
func consumeIterator(itr lockdrop.Iterator) ([]lockdrop.Model, error) {
	defer itr.Close()

	var (
		res []lockdrop.Model
		err error
	)
	for ; itr.Valid(); err = itr.Next() {
		if err != nil {
			return nil, err
		}
		res = append(res, lockdrop.Pair(itr.Key(), itr.Value()))
	}
	return res, err
}

// prefixEnd returns the smallest key that is greater than every key starting
// with the prefix, or nil if there is none.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
