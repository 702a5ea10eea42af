package migration

import (
	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
)

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ gavel.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial schema version declarations from genesis and
// save them in the database. Each declared package starts with schema version
// one.
func (*Initializer) FromGenesis(opts gavel.Options, params gavel.GenesisParams, kv gavel.KVStore) error {
	var packages []string
	if err := opts.ReadOptions("initialize_schema", &packages); err != nil {
		return errors.Wrap(err, "cannot load schema version declarations")
	}

	// The migration package schema must always be initialized.
	packages = append(packages, "migration")

	bucket := NewSchemaBucket()
	for _, pkg := range packages {
		_, err := bucket.Create(kv, &Schema{
			Metadata: &gavel.Metadata{Schema: 1},
			Pkg:      pkg,
			Version:  1,
		})
		// Duplicated initializations are ignored.
		if err != nil && !errors.ErrDuplicate.Is(err) {
			return errors.Wrapf(err, "cannot initialize schema of %q", pkg)
		}
	}
	return nil
}
