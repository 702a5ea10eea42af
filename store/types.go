//nolint
package store

import "github.com/iov-one/gavel"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = gavel.ReadOnlyKVStore
type SetDeleter = gavel.SetDeleter
type KVStore = gavel.KVStore
type Batch = gavel.Batch
type Iterator = gavel.Iterator
type CacheableKVStore = gavel.CacheableKVStore
type KVCacheWrap = gavel.KVCacheWrap
type CommitKVStore = gavel.CommitKVStore
type CommitID = gavel.CommitID
type Model = gavel.Model

// Pair constructs a model from a key-value pair
var Pair = gavel.Pair
