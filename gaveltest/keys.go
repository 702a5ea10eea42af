package gaveltest

import (
	"crypto/rand"

	"github.com/iov-one/gavel"
	"golang.org/x/crypto/ed25519"
)

// NewKey returns a freshly generated ed25519 public key.
func NewKey() ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return pub
}

// NewCondition returns the condition of a freshly generated ed25519 key,
// the same shape that a signature verifying decorator would produce.
func NewCondition() gavel.Condition {
	return gavel.NewCondition("sigs", "ed25519", NewKey())
}
