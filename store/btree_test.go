package store

import (
	"testing"
)

func TestBTreeCacheWrap(t *testing.T) {
	suite := NewTestSuite(makeBTreeCacheWrap)

	t.Run("GetSet", suite.GetSet)
	t.Run("CacheConflicts", suite.CacheConflicts)
	t.Run("FuzzIterator", suite.FuzzIterator)
	t.Run("IteratorWithConflicts", suite.IteratorWithConflicts)
}

// makeBTreeCacheWrap returns a btree backed store without any persistence
func makeBTreeCacheWrap() (CacheableKVStore, func()) {
	store := MemStore()
	return store, func() {}
}

// TestBTreeCacheWrapDiscardNested ensures a discarded nested cache
// does not leak into the wrapping layer
func TestBTreeCacheWrapDiscardNested(t *testing.T) {
	base := MemStore()
	if err := base.Set([]byte("one"), []byte("1")); err != nil {
		t.Fatalf("cannot write to base: %s", err)
	}

	outer := base.CacheWrap()
	if err := outer.Set([]byte("two"), []byte("2")); err != nil {
		t.Fatalf("cannot write to outer cache: %s", err)
	}

	inner := outer.CacheWrap()
	if err := inner.Set([]byte("three"), []byte("3")); err != nil {
		t.Fatalf("cannot write to inner cache: %s", err)
	}
	if err := inner.Delete([]byte("one")); err != nil {
		t.Fatalf("cannot delete in inner cache: %s", err)
	}
	inner.Discard()

	// outer still holds its own write and the base data
	for key, want := range map[string][]byte{
		"one":   []byte("1"),
		"two":   []byte("2"),
		"three": nil,
	} {
		got, err := outer.Get([]byte(key))
		if err != nil {
			t.Fatalf("cannot get %q: %s", key, err)
		}
		if string(got) != string(want) {
			t.Fatalf("key %q: want %q, got %q", key, want, got)
		}
	}
}
