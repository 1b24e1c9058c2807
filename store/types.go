// Package store provides the key/value stores the application state lives
// in: an in-memory btree cache wrap used for every transaction and, in the
// iavl subpackage, the persistent merkle tree committed once per block.
package store

import "github.com/iov-one/lockdrop"

// Aliases of the root interfaces, so that code living next to the store
// implementations reads naturally.
type (
	ReadOnlyKVStore  = lockdrop.ReadOnlyKVStore
	KVStore          = lockdrop.KVStore
	SetDeleter       = lockdrop.SetDeleter
	Batch            = lockdrop.Batch
	Iterator         = lockdrop.Iterator
	CacheableKVStore = lockdrop.CacheableKVStore
	KVCacheWrap      = lockdrop.KVCacheWrap
	CommitKVStore    = lockdrop.CommitKVStore
	CommitID         = lockdrop.CommitID
	Model            = lockdrop.Model
)
