/*

Package migration provides tooling necessary for working with schema versioned
entities. Functionality provided here can be applied both to messages and
models.


Global preparation.

1. update application genesis to declare the initial schema version of every
schema versioned package,

2. register migration bucket query using `RegisterQuery` function


Extension integration.

1. update all protobuf message declarations that are to be schema versioned.
First attribute must be metadata. For example:

    import "github.com/iov-one/gavel/codec.proto";
    message MyMessage {
      gavel.Metadata metadata = 1;
      ...
    }

Make sure that whenever you create a new entity, metadata attribute is provided
as `nil` metadata value is not valid.

2. register your migration functions in package `init`. Schema version is
declared per package not per entity so each upgrade must provide migration
function for all entities. Use `migration.NoModification` for those entities
that require no change. For example:

    func init() {
        migration.MustRegister(1, &MyModel{}, migration.NoModification)
        migration.MustRegister(1, &MyMessage{}, migration.NoModification)
    }

3. declare your bucket using `migration.NewBucket` instead of
`orm.NewBucket`,

4. make sure `.Metadata.Schema` attribute of newly created messages is set.
This is not necessary for models as it will default to the current schema
version.

*/
package migration
