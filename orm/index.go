package orm

import (
	"bytes"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

const indexPrefix = "_i."

// Indexer calculates the secondary index key for a given object. Returning
// a nil key excludes the object from the index.
type Indexer func(Object) ([]byte, error)

// Index represents a secondary index on some data.
// It is indexed by an arbitrary key returned by Indexer.
// The value is one primary key (unique),
// Or an array of primary keys (!unique).
//
// All references of a single index key are stored together, so this
// implementation suits indexes of a moderate fan out, like participants of
// one distribution.
type Index struct {
	name   string
	id     []byte
	unique bool
	index  Indexer
	refKey func([]byte) []byte
}

var _ lockdrop.QueryHandler = Index{}

// NewIndex constructs an index
// Indexer calculates the index for an object
// unique enforces a unique constraint on the index
// refKey calculates the absolute dbkey for a ref
func NewIndex(name string, indexer Indexer, unique bool, refKey func([]byte) []byte) Index {
	return Index{
		name:   name,
		id:     append([]byte(indexPrefix), []byte(name+":")...),
		index:  indexer,
		unique: unique,
		refKey: refKey,
	}
}

// IndexKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (i Index) IndexKey(key []byte) []byte {
	l := len(i.id)
	out := make([]byte, l+len(key))
	copy(out, i.id)
	copy(out[l:], key)
	return out
}

// Update handles updating the reference to the object in
// the secondary index.
//
// prev == nil means insert
// save == nil means delete
// both == nil is error
// if both != nil and prev.Key() != save.Key() this is an error
func (i Index) Update(db lockdrop.KVStore, prev Object, save Object) error {
	switch {
	case prev == nil && save == nil:
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil object")
	case prev == nil:
		return i.insert(db, save)
	case save == nil:
		return i.remove(db, prev)
	default:
		return i.move(db, prev, save)
	}
}

// GetAt returns a list of all pk at that index
func (i Index) GetAt(db lockdrop.ReadOnlyKVStore, index []byte) ([][]byte, error) {
	refs, err := i.load(db, i.IndexKey(index))
	if err != nil {
		return nil, err
	}
	return refs.Refs, nil
}

// Query handles queries from the QueryRouter. The returned models are the
// indexed objects, not the index entries.
func (i Index) Query(db lockdrop.ReadOnlyKVStore, mod string, data []byte) ([]lockdrop.Model, error) {
	switch mod {
	case lockdrop.KeyQueryMod:
		refs, err := i.GetAt(db, data)
		if err != nil {
			return nil, err
		}
		return i.loadRefs(db, refs)
	case lockdrop.PrefixQueryMod:
		entries, err := queryPrefix(db, i.IndexKey(data))
		if err != nil {
			return nil, err
		}
		var res []lockdrop.Model
		for _, e := range entries {
			var refs MultiRef
			if err := refs.Unmarshal(e.Value); err != nil {
				return nil, errors.Wrap(err, "cannot parse index entry")
			}
			models, err := i.loadRefs(db, refs.Refs)
			if err != nil {
				return nil, err
			}
			res = append(res, models...)
		}
		return res, nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown query mod %q", mod)
	}
}

func (i Index) loadRefs(db lockdrop.ReadOnlyKVStore, refs [][]byte) ([]lockdrop.Model, error) {
	res := make([]lockdrop.Model, 0, len(refs))
	for _, r := range refs {
		key := i.refKey(r)
		val, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		if val == nil {
			return nil, errors.Wrapf(errors.ErrDatabase, "index %s points to missing %X", i.name, r)
		}
		res = append(res, lockdrop.Pair(key, val))
	}
	return res, nil
}

func (i Index) move(db lockdrop.KVStore, prev Object, save Object) error {
	if !bytes.Equal(prev.Key(), save.Key()) {
		return errors.Wrap(errors.ErrHuman, "cannot move object to another primary key")
	}
	oldKey, err := i.index(prev)
	if err != nil {
		return err
	}
	newKey, err := i.index(save)
	if err != nil {
		return err
	}
	if bytes.Equal(oldKey, newKey) {
		return nil
	}
	if oldKey != nil {
		if err := i.removeRef(db, oldKey, prev.Key()); err != nil {
			return err
		}
	}
	if newKey != nil {
		return i.addRef(db, newKey, save.Key())
	}
	return nil
}

func (i Index) insert(db lockdrop.KVStore, save Object) error {
	key, err := i.index(save)
	if err != nil || key == nil {
		return err
	}
	return i.addRef(db, key, save.Key())
}

func (i Index) remove(db lockdrop.KVStore, prev Object) error {
	key, err := i.index(prev)
	if err != nil || key == nil {
		return err
	}
	return i.removeRef(db, key, prev.Key())
}

func (i Index) addRef(db lockdrop.KVStore, key, pk []byte) error {
	dbkey := i.IndexKey(key)
	refs, err := i.load(db, dbkey)
	if err != nil {
		return err
	}
	if i.unique && len(refs.Refs) > 0 {
		return errors.Wrapf(errors.ErrDuplicate, "index %s: %X", i.name, key)
	}
	if err := refs.Add(pk); err != nil {
		return err
	}
	return i.store(db, dbkey, refs)
}

func (i Index) removeRef(db lockdrop.KVStore, key, pk []byte) error {
	dbkey := i.IndexKey(key)
	refs, err := i.load(db, dbkey)
	if err != nil {
		return err
	}
	if err := refs.Remove(pk); err != nil {
		return err
	}
	if len(refs.Refs) == 0 {
		return db.Delete(dbkey)
	}
	return i.store(db, dbkey, refs)
}

func (i Index) load(db lockdrop.ReadOnlyKVStore, dbkey []byte) (*MultiRef, error) {
	raw, err := db.Get(dbkey)
	if err != nil {
		return nil, err
	}
	var refs MultiRef
	if raw == nil {
		return &refs, nil
	}
	if err := refs.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "cannot parse index entry")
	}
	return &refs, nil
}

func (i Index) store(db lockdrop.KVStore, dbkey []byte, refs *MultiRef) error {
	raw, err := refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(dbkey, raw)
}
