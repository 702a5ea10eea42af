package gaveltest

import (
	"testing"

	"github.com/iov-one/gavel"
)

// ParseAddress takes a gavel address in a human readable format and returns
// its binary representation. This function is a test helper that is using
// gavel.ParseAddress function functionality.
func ParseAddress(t testing.TB, encodedAddress string) gavel.Address {
	t.Helper()

	addr, err := gavel.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
