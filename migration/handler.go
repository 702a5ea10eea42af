package migration

import (
	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
)

// SchemaMigratingRegistry decorates given registry to always wrap
// registered handlers with a schema migrating handler for the given
// package.
func SchemaMigratingRegistry(packageName string, r gavel.Registry) gavel.Registry {
	return &schemaMigratingRegistry{
		packageName: packageName,
		reg:         r,
	}
}

type schemaMigratingRegistry struct {
	packageName string
	reg         gavel.Registry
}

func (r *schemaMigratingRegistry) Handle(path string, h gavel.Handler) {
	r.reg.Handle(path, SchemaMigratingHandler(r.packageName, h))
}

// SchemaMigratingHandler returns a handler that will ensure incoming
// messages are in the current schema version format. If a message in older
// schema is handled then it is first being migrated. Messages that cannot be
// migrated to current schema version are returning migration error. This
// functionality is executed before the decorated handler and it is completely
// transparent to the wrapped handler.
func SchemaMigratingHandler(packageName string, h gavel.Handler) gavel.Handler {
	return &schemaMigratingHandler{
		handler:     h,
		packageName: packageName,
		schema:      NewSchemaBucket(),
		migrations:  reg,
	}
}

type schemaMigratingHandler struct {
	handler     gavel.Handler
	packageName string
	schema      *SchemaBucket
	migrations  *register
}

func (h *schemaMigratingHandler) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	if err := h.migrate(db, tx); err != nil {
		return nil, errors.Wrap(err, "migration")
	}
	return h.handler.Check(ctx, db, tx)
}

func (h *schemaMigratingHandler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	if err := h.migrate(db, tx); err != nil {
		return nil, errors.Wrap(err, "migration")
	}
	return h.handler.Deliver(ctx, db, tx)
}

func (h *schemaMigratingHandler) migrate(db gavel.ReadOnlyKVStore, tx gavel.Tx) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "get msg")
	}

	m, ok := msg.(Migratable)
	if !ok {
		return errors.Wrap(errors.ErrMsg, "message cannot be migrated")
	}
	currSchemaVer, err := h.schema.CurrentSchema(db, h.packageName)
	if err != nil {
		return errors.Wrap(err, "current message schema")
	}

	// Migration is applied in place, directly modifying the instance.
	if err := h.migrations.Apply(db, m, currSchemaVer); err != nil {
		return errors.Wrap(err, "schema migration")
	}
	return nil
}
