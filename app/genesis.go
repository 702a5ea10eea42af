package app

import (
	"github.com/iov-one/gavel"
)

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...gavel.Initializer) gavel.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []gavel.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts gavel.Options, params gavel.GenesisParams, kv gavel.KVStore) error {
	for _, i := range c.inits {
		if i == nil {
			continue
		}
		if err := i.FromGenesis(opts, params, kv); err != nil {
			return err
		}
	}
	return nil
}
