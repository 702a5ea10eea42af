package orm

import (
	"github.com/iov-one/gavel"
)

// prefixRange turns a prefix into the start and end key of a half-open
// interval covering exactly the keys with that prefix. The end key is the
// prefix with its last byte incremented, carrying any overflow to the left.
// A nil end means the range is unbounded above.
func prefixRange(prefix []byte) ([]byte, []byte) {
	// special case: no prefix is whole range
	if len(prefix) == 0 {
		return nil, nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; ; i-- {
		end[i]++
		if end[i] != 0 {
			break
		}
		// the full prefix is 0xff... so there is no end to the range
		if i == 0 {
			end = nil
			break
		}
	}
	return prefix, end
}

// queryPrefix returns all models with keys matching the given prefix, in
// ascending key order.
func queryPrefix(db gavel.ReadOnlyKVStore, prefix []byte) ([]gavel.Model, error) {
	start, end := prefixRange(prefix)
	itr, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer itr.Close()

	var res []gavel.Model
	for itr.Valid() {
		res = append(res, gavel.Model{
			Key:   itr.Key(),
			Value: itr.Value(),
		})
		if err := itr.Next(); err != nil {
			return nil, err
		}
	}
	return res, nil
}
