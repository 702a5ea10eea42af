package gaveltest

import "encoding/binary"

// SequenceID returns an ID encoded the same way as the orm sequence
// counter does it. Use it in tests to compute the expected key of an
// entity created via a bucket sequence.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
