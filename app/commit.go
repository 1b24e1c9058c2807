package app

import (
	"encoding/binary"
	"time"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

// commitState keeps the committed store together with the two working
// copies used between commits. Deliver writes are flushed on commit, check
// writes are always dropped.
type commitState struct {
	committed lockdrop.CommitKVStore
	deliver   lockdrop.KVCacheWrap
	check     lockdrop.KVCacheWrap
}

// newCommitState loads the latest persisted version or panics.
func newCommitState(store lockdrop.CommitKVStore) *commitState {
	if err := store.LoadLatestVersion(); err != nil {
		panic(err)
	}
	cs := &commitState{committed: store}
	cs.reset()
	return cs
}

func (cs *commitState) reset() {
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
}

func (cs *commitState) LatestVersion() (lockdrop.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit persists the delivered block and starts new working copies.
func (cs *commitState) Commit() (lockdrop.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return lockdrop.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	cs.check.Discard()
	id, err := cs.committed.Commit()
	if err != nil {
		return id, err
	}
	cs.reset()
	return id, nil
}

func (cs *commitState) CheckStore() lockdrop.CacheableKVStore   { return cs.check }
func (cs *commitState) DeliverStore() lockdrop.CacheableKVStore { return cs.deliver }

// Node metadata is kept next to the extension buckets, under a prefix no
// bucket name can produce.
const (
	chainIDKey   = "_ld:chainID"
	blockTimeKey = "_ld:blockTime"
)

func mustLoadChainID(kv lockdrop.ReadOnlyKVStore) string {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		panic(err)
	}
	return string(v)
}

// saveChainID writes the chain ID once, at genesis.
func saveChainID(kv lockdrop.KVStore, chainID string) error {
	if !lockdrop.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInvalidInput, "chain id: %v", chainID)
	}
	switch exists, err := kv.Has([]byte(chainIDKey)); {
	case err != nil:
		return errors.Wrap(err, "load chain id")
	case exists:
		return errors.Wrap(errors.ErrUnauthorized, "chain id is set at genesis only")
	}
	return errors.Wrap(kv.Set([]byte(chainIDKey), []byte(chainID)), "save chain id")
}

// SaveBlockTime records the time of the block being processed. It is
// committed together with the block.
func SaveBlockTime(kv lockdrop.KVStore, t time.Time) error {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(t.Unix()))
	if err := kv.Set([]byte(blockTimeKey), raw); err != nil {
		return errors.Wrap(err, "save block time")
	}
	return nil
}

// LastBlockTime returns the time of the last block written to kv. Read from
// the committed state it is the time the next block builds on. ErrNotFound
// is returned before the first block.
func LastBlockTime(kv lockdrop.ReadOnlyKVStore) (time.Time, error) {
	raw, err := kv.Get([]byte(blockTimeKey))
	if err != nil {
		return time.Time{}, errors.Wrap(err, "load block time")
	}
	switch len(raw) {
	case 0:
		return time.Time{}, errors.Wrap(errors.ErrNotFound, "no block")
	case 8:
		return time.Unix(int64(binary.BigEndian.Uint64(raw)), 0).UTC(), nil
	default:
		return time.Time{}, errors.Wrapf(errors.ErrInvalidState, "block time of %d bytes", len(raw))
	}
}
