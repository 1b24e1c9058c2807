package orm

import (
	"testing"

	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/store"
	"github.com/iov-one/lockdrop/weavetest/assert"
)

func TestModelBucketPutSequence(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	k1, err := b.Put(db, nil, &counter{Count: 1})
	assert.Nil(t, err)
	k2, err := b.Put(db, nil, &counter{Count: 2})
	assert.Nil(t, err)
	assert.Equal(t, EncodeSequence(1), k1)
	assert.Equal(t, EncodeSequence(2), k2)

	var c counter
	assert.Nil(t, b.One(db, k2, &c))
	assert.Equal(t, int64(2), c.Count)
}

func TestModelBucketPutValidates(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	_, err := b.Put(db, []byte("a"), &counter{Count: -1})
	if !errors.ErrInvalidState.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
	if err := b.Has(db, []byte("a")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("invalid model was stored: %v", err)
	}
}

func TestModelBucketOneAndDelete(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	var c counter
	if err := b.One(db, []byte("missing"), &c); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %v", err)
	}

	_, err := b.Put(db, []byte("a"), &counter{Owner: []byte("alice"), Count: 7})
	assert.Nil(t, err)
	assert.Nil(t, b.Has(db, []byte("a")))
	assert.Nil(t, b.One(db, []byte("a"), &c))
	assert.Equal(t, []byte("alice"), c.Owner)

	assert.Nil(t, b.Delete(db, []byte("a")))
	if err := b.Delete(db, []byte("a")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestModelBucketByIndex(t *testing.T) {
	cases := map[string]struct {
		unique    bool
		stored    map[string]*counter
		query     []byte
		wantKeys  [][]byte
		wantErr   *errors.Error
		wantCount int
	}{
		"multi index returns all matches": {
			stored: map[string]*counter{
				"a": {Owner: []byte("alice"), Count: 1},
				"b": {Owner: []byte("bob"), Count: 2},
				"c": {Owner: []byte("alice"), Count: 3},
			},
			query:     []byte("alice"),
			wantKeys:  [][]byte{[]byte("a"), []byte("c")},
			wantCount: 2,
		},
		"no match": {
			stored: map[string]*counter{
				"a": {Owner: []byte("alice"), Count: 1},
			},
			query:     []byte("carol"),
			wantCount: 0,
		},
		"unique index rejects a duplicate": {
			unique: true,
			stored: map[string]*counter{
				"a": {Owner: []byte("alice"), Count: 1},
				"b": {Owner: []byte("alice"), Count: 2},
			},
			wantErr: errors.ErrDuplicate,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			b := NewModelBucket("cnts", &counter{}, WithIndex("owner", ownerIndexer, tc.unique))

			var err error
			for _, k := range []string{"a", "b", "c"} {
				m, ok := tc.stored[k]
				if !ok {
					continue
				}
				if _, err = b.Put(db, []byte(k), m); err != nil {
					break
				}
			}
			if tc.wantErr != nil {
				if !tc.wantErr.Is(err) {
					t.Fatalf("want %v error, got %+v", tc.wantErr, err)
				}
				return
			}
			assert.Nil(t, err)

			var found []*counter
			keys, err := b.ByIndex(db, "owner", tc.query, &found)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantCount, len(found))
			if tc.wantCount > 0 {
				assert.Equal(t, tc.wantKeys, keys)
			}
		})
	}
}

func TestModelBucketIndexFollowsUpdates(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{}, WithIndex("owner", ownerIndexer, false))

	_, err := b.Put(db, []byte("a"), &counter{Owner: []byte("alice")})
	assert.Nil(t, err)
	_, err = b.Put(db, []byte("a"), &counter{Owner: []byte("bob")})
	assert.Nil(t, err)

	var found []*counter
	_, err = b.ByIndex(db, "owner", []byte("alice"), &found)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(found))

	_, err = b.ByIndex(db, "owner", []byte("bob"), &found)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(found))

	assert.Nil(t, b.Delete(db, []byte("a")))
	found = nil
	_, err = b.ByIndex(db, "owner", []byte("bob"), &found)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(found))

	if _, err := b.ByIndex(db, "nope", []byte("bob"), &found); !ErrInvalidIndex.Is(err) {
		t.Fatalf("want invalid index, got %v", err)
	}
}
