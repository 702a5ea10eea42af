package app

import (
	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx and CheckTx handlers to the storage
// and query functionality of StoreApp
type BaseApp struct {
	*StoreApp
	decoder gavel.TxDecoder
	handler gavel.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application
func NewBaseApp(
	store *StoreApp,
	decoder gavel.TxDecoder,
	handler gavel.Handler,
	debug bool,
) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

// DeliverTx - ABCI - dispatches to the handler
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return gavel.DeliverTxError(err, b.debug)
	}

	// ignore error here, allow it to be logged
	ctx := gavel.WithLogInfo(b.BlockContext(),
		"call", "deliver_tx",
		"path", gavel.GetPath(tx))

	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	if err == nil {
		b.AddValChange(res.Diff)
	}
	return gavel.DeliverOrError(res, err, b.debug)
}

// CheckTx - ABCI - dispatches to the handler
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return gavel.CheckTxError(err, b.debug)
	}

	ctx := gavel.WithLogInfo(b.BlockContext(),
		"call", "check_tx",
		"path", gavel.GetPath(tx))

	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return gavel.CheckOrError(res, err, b.debug)
}

// loadTx calls the decoder, and captures any panics
func (b BaseApp) loadTx(txBytes []byte) (tx gavel.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = b.decoder(txBytes)
	return
}
