package store

import (
	"testing"

	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/gaveltest/assert"
)

// TestSliceIterator makes sure the basic slice iterator works.
func TestSliceIterator(t *testing.T) {
	const size = 10

	ks := randKeys(size, 8)
	vs := randKeys(size, 40)

	models := make([]Model, size)
	for i := 0; i < size; i++ {
		models[i].Key = ks[i]
		models[i].Value = vs[i]
	}

	// make sure proper iteration works
	for iter, i := NewSliceIterator(models), 0; iter.Valid(); i++ {
		if i >= size {
			t.Fatalf("iterator step greater than the size: %d >= %d", i, size)
		}
		assert.Equal(t, ks[i], iter.Key())
		assert.Equal(t, vs[i], iter.Value())
		assert.Nil(t, iter.Next())
	}

	it := NewSliceIterator(models)
	if !it.Valid() {
		t.Fatal("iterator expected to be valid")
	}
	it.Close()
	if it.Valid() {
		t.Fatal("closed iterator must be invalid")
	}
	if err := it.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("calling Next on invalid iterator must return iterator done, got %+v", err)
	}
}

func TestNonAtomicBatch(t *testing.T) {
	base := MemStore()
	batch := NewNonAtomicBatch(base)

	assert.Nil(t, batch.Set([]byte("a"), []byte("1")))
	assert.Nil(t, batch.Set([]byte("b"), []byte("2")))
	assert.Nil(t, batch.Delete([]byte("a")))
	if got := len(batch.ShowOps()); got != 3 {
		t.Fatalf("want 3 ops, got %d", got)
	}

	// nothing visible in the store until the batch is written
	v, err := base.Get([]byte("b"))
	assert.Nil(t, err)
	if v != nil {
		t.Fatal("batched write must not be applied")
	}

	assert.Nil(t, batch.Write())
	v, err = base.Get([]byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("2"), v)
	v, err = base.Get([]byte("a"))
	assert.Nil(t, err)
	if v != nil {
		t.Fatal("deleted key must not be present")
	}

	// writing resets the ops
	if got := len(batch.ShowOps()); got != 0 {
		t.Fatalf("want no ops after write, got %d", got)
	}
}
