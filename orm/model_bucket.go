package orm

import (
	"reflect"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

// ModelBucket operates on Models rather than Objects. It is the type safe
// entry point extensions use to store their records.
type ModelBucket struct {
	b     Bucket
	idSeq Sequence
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *ModelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using value returned by the
// indexer function.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *ModelBucket) {
		mb.b = mb.b.WithIndex(name, indexer, unique)
	}
}

// WithIDSequence configures the bucket to use the given sequence instance
// for generating keys of entities stored without a key.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(mb *ModelBucket) {
		mb.idSeq = s
	}
}

// NewModelBucket returns a ModelBucket instance. The model is used as a
// prototype of all stored entities.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	b := NewBucket(name, newRecord(nil, m))
	mb := ModelBucket{
		b:     b,
		idSeq: b.Sequence("id"),
	}
	for _, fn := range opts {
		fn(&mb)
	}
	return mb
}

// One query the database for a single model instance. Lookup is done
// by the primary index key. Result is loaded into given destination
// model.
// This method returns ErrNotFound if the entity does not exist in the
// database.
// If given model type cannot be used to contain stored entity, ErrInvalidType
// is returned.
func (mb ModelBucket) One(db lockdrop.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.b.Get(db, key)
	if err != nil {
		return err
	}
	if obj == nil || obj.Value() == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	res := obj.Value()

	if !reflect.TypeOf(res).AssignableTo(reflect.TypeOf(dest)) {
		return errors.Wrapf(errors.ErrInvalidType, "%T cannot be represented as %T", res, dest)
	}

	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(res).Elem())
	return nil
}

// Has returns nil if an entity with given primary key value exists. It
// returns ErrNotFound if no entity can be found.
func (mb ModelBucket) Has(db lockdrop.ReadOnlyKVStore, key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrNotFound, "nil key")
	}
	ok, err := db.Has(mb.b.DBKey(key))
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotFound
	}
	return nil
}

// ByIndex returns all objects that secondary index with given name and
// given key. Main index is always unique but secondary indexes can return
// more than one value for the same key.
// All matching entities are appended to given destination slice. Destination
// must be a pointer to a slice of model pointers. Keys of the found entities
// are returned in the same order.
func (mb ModelBucket) ByIndex(db lockdrop.ReadOnlyKVStore, indexName string, key []byte, destination interface{}) ([][]byte, error) {
	objs, err := mb.b.GetIndexed(db, indexName, key)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, nil
	}

	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrap(errors.ErrInvalidType, "destination must be a pointer to a slice of models")
	}
	slice := dest.Elem()
	keys := make([][]byte, 0, len(objs))
	for _, obj := range objs {
		if obj == nil {
			return nil, errors.Wrapf(errors.ErrDatabase, "index %s references a missing entity", indexName)
		}
		val := reflect.ValueOf(obj.Value())
		if !val.Type().AssignableTo(slice.Type().Elem()) {
			return nil, errors.Wrapf(errors.ErrInvalidType, "%T cannot be represented as %s", obj.Value(), slice.Type().Elem())
		}
		slice = reflect.Append(slice, val)
		keys = append(keys, obj.Key())
	}
	dest.Elem().Set(slice)
	return keys, nil
}

// Put saves given model in the database. Before inserting into database,
// model is validated using its Validate method.
// If the key is nil or zero length then a sequence generator is used to
// create a unique key value.
// Using a key that already exists in the database cause the value to be
// overwritten.
func (mb ModelBucket) Put(db lockdrop.KVStore, key []byte, m Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}

	if len(key) == 0 {
		var err error
		key, err = mb.idSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "ID sequence")
		}
	}

	obj := newRecord(key, m)
	if err := mb.b.Save(db, obj); err != nil {
		return nil, errors.Wrap(err, "cannot store in the database")
	}
	return key, nil
}

// Delete removes an entity with given primary key from the database. It
// returns ErrNotFound if an entity with given key does not exist.
func (mb ModelBucket) Delete(db lockdrop.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

// Register registers this buckets content to be accessible via query
// requests under the given name.
func (mb ModelBucket) Register(name string, r lockdrop.QueryRouter) {
	mb.b.Register(name, r)
}
