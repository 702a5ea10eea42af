package iavl

import (
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// nodeCacheSize is the number of iavl nodes kept in memory. Raising it
// trades memory for fewer database reads on a big tree.
const nodeCacheSize = 10000

// CommitStore manages a iavl committed state
type CommitStore struct {
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with disk backing. All data is
// persisted in a goleveldb database stored at dir/name.db
func NewCommitStore(dir, name string) CommitStore {
	db := dbm.NewDB(name, dbm.GoLevelDBBackend, dir)
	tree := iavl.NewMutableTree(db, nodeCacheSize)
	return CommitStore{tree: tree}
}

// MockCommitStore returns a store backed by memory only,
// with no persistence. It is intended for tests.
func MockCommitStore() CommitStore {
	db := dbm.NewMemDB()
	tree := iavl.NewMutableTree(db, nodeCacheSize)
	return CommitStore{tree: tree}
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist. Panics on nil key.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	version := s.tree.Version()
	_, value := s.tree.GetVersioned(key, version)
	return value, nil
}

// Commit the next version to disk, and returns info
func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(err, "cannot save version")
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s CommitStore) LoadLatestVersion() error {
	_, err := s.tree.Load()
	return err
}

// LatestVersion returns info on the latest version saved to disk
func (s CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap returns a cache layer on top of this store. All writes are
// buffered in a btree and hit the iavl working tree only on Write. The
// working tree itself becomes part of the persisted state on Commit.
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	w := treeStore{tree: s.tree}
	return store.NewBTreeCacheWrap(w, w.NewBatch(), nil)
}

// treeStore exposes the mutable iavl tree as a KVStore so that it can
// back a btree cache wrap.
type treeStore struct {
	tree *iavl.MutableTree
}

var _ store.KVStore = treeStore{}

// Get returns nil iff key doesn't exist. Panics on nil key.
func (t treeStore) Get(key []byte) ([]byte, error) {
	_, value := t.tree.Get(key)
	return value, nil
}

// Has checks if a key exists. Panics on nil key.
func (t treeStore) Has(key []byte) (bool, error) {
	return t.tree.Has(key), nil
}

// Set adds a new value to the working tree
func (t treeStore) Set(key, value []byte) error {
	t.tree.Set(key, value)
	return nil
}

// Delete removes from the working tree
func (t treeStore) Delete(key []byte) error {
	t.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that can write multiple ops atomically.
// The iavl working tree is memory only until committed, so buffering
// the writes is safe here.
func (t treeStore) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(t)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
// The matching range is materialized before the iterator is returned, so
// later writes to the tree do not corrupt the iteration.
func (t treeStore) Iterator(start, end []byte) (store.Iterator, error) {
	return t.materialize(start, end, true), nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
func (t treeStore) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return t.materialize(start, end, false), nil
}

func (t treeStore) materialize(start, end []byte, ascending bool) store.Iterator {
	var models []store.Model
	collect := func(key, value []byte) bool {
		models = append(models, store.Model{Key: key, Value: value})
		return false
	}
	t.tree.IterateRange(start, end, ascending, collect)
	return store.NewSliceIterator(models)
}
