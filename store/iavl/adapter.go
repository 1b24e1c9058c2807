// Package iavl provides the persistent commit store the application state is
// saved to at the end of every block.
package iavl

import (
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/store"
)

// DefaultCacheSize is the number of tree nodes kept in memory.
const DefaultCacheSize = 10000

// DefaultHistory is the number of versions kept before the older ones are
// pruned. Zero keeps all versions.
const DefaultHistory = 0

// CommitStore manages a iavl committed state
type CommitStore struct {
	tree       *iavl.MutableTree
	numHistory int64
}

var _ lockdrop.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with disk backing. The database is
// named name and lives in the dir directory.
func NewCommitStore(dir, name string) (CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return CommitStore{}, errors.Wrapf(errors.ErrDatabase, "open %s/%s: %s", dir, name, err)
	}
	return NewCommitStoreFromDB(db), nil
}

// MockCommitStore creates a new in-memory store for tests.
func MockCommitStore() CommitStore {
	return NewCommitStoreFromDB(dbm.NewMemDB())
}

// NewCommitStoreFromDB builds the store on top of an open database.
func NewCommitStoreFromDB(db dbm.DB) CommitStore {
	tree := iavl.NewMutableTree(db, DefaultCacheSize)
	return CommitStore{
		tree:       tree,
		numHistory: DefaultHistory,
	}
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist. Panics on nil key.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.Get(key)
	return val, nil
}

// Commit the next version to disk, and returns info
func (s CommitStore) Commit() (lockdrop.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return lockdrop.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}

	// release an old version of history
	if s.numHistory > 0 && s.numHistory < version {
		if err := s.tree.DeleteVersion(version - s.numHistory); err != nil {
			return lockdrop.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}

	return lockdrop.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s CommitStore) LatestVersion() (lockdrop.CommitID, error) {
	return lockdrop.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap gives us a savepoint to perform actions. Nothing reaches the
// tree until Write is called.
func (s CommitStore) CacheWrap() lockdrop.KVCacheWrap {
	return store.NewBTreeCacheWrap(adapter{s.tree}, s.NewBatch(), nil)
}

// NewBatch returns a batch writing to the working tree.
func (s CommitStore) NewBatch() lockdrop.Batch {
	return store.NewNonAtomicBatch(adapter{s.tree})
}

// adapter converts the working tree into a KVStore. Writes are visible in
// the tree immediately and persisted on Commit.
type adapter struct {
	tree *iavl.MutableTree
}

var _ lockdrop.KVStore = adapter{}

func (a adapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

func (a adapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

func (a adapter) Set(key, value []byte) error {
	a.tree.Set(key, value)
	return nil
}

func (a adapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

func (a adapter) NewBatch() lockdrop.Batch {
	return store.NewNonAtomicBatch(a)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (a adapter) Iterator(start, end []byte) (lockdrop.Iterator, error) {
	return a.collect(start, end, true), nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
func (a adapter) ReverseIterator(start, end []byte) (lockdrop.Iterator, error) {
	return a.collect(start, end, false), nil
}

func (a adapter) collect(start, end []byte, ascending bool) lockdrop.Iterator {
	var res []lockdrop.Model
	a.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, lockdrop.Pair(key, value))
		return false
	})
	return store.NewSliceIterator(res)
}
