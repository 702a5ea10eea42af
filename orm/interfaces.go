package orm

import (
	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/x"
)

// Object is what is stored in the bucket
// Key is joined with the prefix to set the full key
// Value is the data stored
//
// this can be light wrapper around a protobuf-defined type
type Object interface {
	Keyed
	Cloneable
	// Validate returns error if the object is not in a valid
	// state to save to the db (eg. field missing, out of range, ...)
	x.Validater
	Value() gavel.Persistent
}

// Reader defines an interface that allows reading objects from the db
type Reader interface {
	Get(db gavel.ReadOnlyKVStore, key []byte) (Object, error)
}

// Keyed is anything that can identify itself
type Keyed interface {
	Key() []byte
	SetKey([]byte)
}

// Cloneable will create a new object that can be loaded into
type Cloneable interface {
	Clone() Object
}

// Model is implemented by any value that can be stored in a bucket.
// Entities are copied when cached in memory, so every model must
// know how to produce an independent deep copy of itself.
type Model interface {
	x.Validater
	gavel.Persistent
	Copy() Model
}
