package orm

import (
	"testing"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/gaveltest/assert"
	"github.com/iov-one/gavel/store"
)

func TestBucketName(t *testing.T) {
	obj := NewSimpleObj(nil, &Counter{})

	assert.Panics(t, func() {
		// An invalid bucket name must crash.
		NewBucket("l33t", obj)
	})
}

func TestBucketCannotSaveInvalid(t *testing.T) {
	counter := &Counter{
		Count: -999, // Negative value is not valid.
	}
	if err := counter.Validate(); !errors.ErrState.Is(err) {
		t.Fatalf("unexpected error: %s", err)
	}

	o := NewSimpleObj([]byte("mykey"), counter)
	b := NewBucket("mybucket", o)

	db := store.MemStore()
	if err := b.Save(db, o); !errors.ErrState.Is(err) {
		t.Fatalf("invalid object must not save: %s", err)
	}
}

func TestBucketGetSave(t *testing.T) {
	counter := NewCounter(848)
	assert.Nil(t, counter.Validate())

	o := NewSimpleObj([]byte("mykey"), counter)
	b := NewBucket("mybucket", o)

	db := store.MemStore()
	if err := b.Save(db, o); err != nil {
		t.Fatalf("cannot save: %s", err)
	}

	res, err := b.Get(db, []byte("mykey"))
	if err != nil {
		t.Fatalf("cannot get object: %s", err)
	}

	c, ok := res.Value().(*Counter)
	if !ok {
		t.Fatalf("unexpected type: %T", res.Value())
	}
	if c.Count != 848 {
		t.Fatalf("unexpected counter state: %d", c.Count)
	}

	// Update the counter state. This is a reference so the data
	// represented by `res` will be updated as well. Storing res in the
	// bucket must save the new state.
	c.Count = 59
	if err := b.Save(db, res); err != nil {
		t.Fatalf("cannot overwrite counter: %s", err)
	}

	res, err = b.Get(db, []byte("mykey"))
	if err != nil {
		t.Fatalf("cannot get overwritten object: %s", err)
	}
	if c, ok = res.Value().(*Counter); !ok {
		t.Fatalf("unexpected type: %T", res.Value())
	} else if c.Count != 59 {
		t.Fatalf("unexpected counter state: %d", c.Count)
	}
}

func TestBucketGetMissing(t *testing.T) {
	b := NewBucket("mybucket", NewSimpleObj(nil, &Counter{}))
	db := store.MemStore()

	res, err := b.Get(db, []byte("no-such-key"))
	assert.Nil(t, err)
	if res != nil {
		t.Fatalf("want nil object on miss, got %v", res)
	}

	if err := b.Has(db, []byte("no-such-key")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}
}

func TestBucketHasAfterSaveAndDelete(t *testing.T) {
	b := NewBucket("mybucket", NewSimpleObj(nil, &Counter{}))
	db := store.MemStore()

	key := []byte("counted")
	if err := b.Save(db, NewSimpleObj(key, NewCounter(1))); err != nil {
		t.Fatalf("cannot save: %s", err)
	}
	assert.Nil(t, b.Has(db, key))

	assert.Nil(t, b.Delete(db, key))
	if err := b.Has(db, key); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found after delete, got %+v", err)
	}
}

func TestBucketGetCorrupted(t *testing.T) {
	b := NewBucket("mybucket", NewSimpleObj(nil, &Counter{}))
	db := store.MemStore()

	// Data written past the bucket API is not guaranteed to deserialize.
	key := []byte("damaged")
	assert.Nil(t, db.Set(b.DBKey(key), []byte{0xff, 0xff}))

	if _, err := b.Get(db, key); err == nil {
		t.Fatal("expected a parse failure")
	}
}

// Make sure we have independent sequences.
func TestBucketSequence(t *testing.T) {
	b1 := NewBucket("aaa", NewSimpleObj(nil, &Counter{}))
	b2 := NewBucket("bbb", NewSimpleObj(nil, &Counter{}))

	db := store.MemStore()

	// Ensure they are sequential and not affecting one another. Repeat
	// this operation several times.
	for i := int64(1); i < 10; i++ {
		sa := b1.Sequence("seq1")
		a, err := sa.NextInt(db)
		assert.Nil(t, err)

		sb := b1.Sequence("seq2") // The same bucket but different name.
		b, err := sb.NextInt(db)
		assert.Nil(t, err)

		sc := b2.Sequence("seq1") // The same name but different bucket.
		c, err := sc.NextInt(db)
		assert.Nil(t, err)

		if a != i || a != b || a != c {
			t.Fatalf("sequences must increment independently: a=%d b=%d c=%d", a, b, c)
		}
	}
}

func TestBucketQuery(t *testing.T) {
	b := NewBucket("mybucket", NewSimpleObj(nil, &Counter{}))
	db := store.MemStore()

	for i, key := range [][]byte{
		[]byte("aab"),
		[]byte("aac"),
		[]byte("bbb"),
	} {
		obj := NewSimpleObj(key, NewCounter(int64(i+1)))
		if err := b.Save(db, obj); err != nil {
			t.Fatalf("cannot save %q: %s", key, err)
		}
	}

	qr := gavel.NewQueryRouter()
	b.Register("counters", qr)
	h := qr.Handler("/counters")
	if h == nil {
		t.Fatal("query handler was not registered")
	}

	// An exact key lookup returns a single model.
	models, err := h.Query(db, gavel.KeyQueryMod, []byte("aab"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(models))
	assert.Equal(t, b.DBKey([]byte("aab")), models[0].Key)

	// A miss returns no models.
	models, err = h.Query(db, gavel.KeyQueryMod, []byte("zzz"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(models))

	// A prefix scan returns all matching models in key order.
	models, err = h.Query(db, gavel.PrefixQueryMod, []byte("aa"))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(models))
	assert.Equal(t, b.DBKey([]byte("aab")), models[0].Key)
	assert.Equal(t, b.DBKey([]byte("aac")), models[1].Key)

	// Unknown modifiers are rejected.
	if _, err := h.Query(db, "range", nil); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %+v", err)
	}
}
