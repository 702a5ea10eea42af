package board

import (
	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
)

// ActionDecoder turns a raw action stored with a proposal into the message
// to execute. The application defines the set of messages a proposal can
// carry and how they are serialized.
type ActionDecoder func(raw []byte) (gavel.Msg, error)

// Executor applies one accepted action of an executed proposal. Use
// HandlerAsExecutor to route the actions through the application handler
// stack, so they are processed like regular transactions.
type Executor func(ctx gavel.Context, db gavel.KVStore, msg gavel.Msg) (*gavel.DeliverResult, error)

// HandlerAsExecutor wraps the message in a fake transaction so that any
// handler, usually the application router, can serve as an Executor.
func HandlerAsExecutor(h gavel.Handler) Executor {
	return func(ctx gavel.Context, db gavel.KVStore, msg gavel.Msg) (*gavel.DeliverResult, error) {
		return h.Deliver(ctx, db, &execTx{msg: msg})
	}
}

// execTx carries a decoded action through the handler stack. It exists only
// in memory during proposal execution and cannot be serialized.
type execTx struct {
	msg gavel.Msg
}

var _ gavel.Tx = (*execTx)(nil)

func (tx *execTx) GetMsg() (gavel.Msg, error) {
	return tx.msg, nil
}

func (tx *execTx) Marshal() ([]byte, error) {
	return nil, errors.Wrap(errors.ErrHuman, "execution tx cannot be serialized")
}

func (tx *execTx) Unmarshal([]byte) error {
	return errors.Wrap(errors.ErrHuman, "execution tx cannot be serialized")
}
