/*

Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each package keeps its configuration as a single protobuf-serialized entity,
stored under a key derived from the package name. Configuration is loaded
from the genesis file during chain initialization and can later be replaced
by any handler with write access to the store.

*/
package gconf
