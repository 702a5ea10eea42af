package app

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/gaveltest"
	"github.com/iov-one/gavel/gaveltest/assert"
	"github.com/iov-one/gavel/store/iavl"
	abci "github.com/tendermint/tendermint/abci/types"
)

// pathTxDecoder interprets the whole payload as the message path. This is
// enough of a wire format to route transactions in tests.
func pathTxDecoder(raw []byte) (gavel.Tx, error) {
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "empty transaction")
	}
	return &gaveltest.Tx{
		Msg: &gaveltest.Msg{RoutePath: string(raw)},
	}, nil
}

func testBaseApp(t *testing.T, handler gavel.Handler) BaseApp {
	t.Helper()

	router := NewRouter()
	router.Handle("test/good", handler)

	s := NewStoreApp("base", iavl.MockCommitStore(), gavel.NewQueryRouter(), context.Background()).
		WithInit(ChainInitializers())
	s.InitChain(abci.RequestInitChain{
		AppStateBytes: []byte(`{}`),
		ChainId:       "test-chain-33",
	})
	b := NewBaseApp(s, pathTxDecoder, router, false)

	b.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{
		Height: 1,
		Time:   time.Now(),
	}})
	return b
}

func TestBaseAppDispatch(t *testing.T) {
	diff := []abci.ValidatorUpdate{
		{PubKey: abci.PubKey{Type: "ed25519", Data: []byte("someKey")}, Power: 3},
	}
	handler := &gaveltest.Handler{
		CheckResult:   gavel.CheckResult{GasAllocated: 7},
		DeliverResult: gavel.DeliverResult{Data: []byte("ok"), Diff: diff},
	}
	b := testBaseApp(t, handler)

	cres := b.CheckTx([]byte("test/good"))
	if cres.Code != 0 {
		t.Fatalf("check failed: %s", cres.Log)
	}
	assert.Equal(t, int64(7), cres.GasWanted)

	dres := b.DeliverTx([]byte("test/good"))
	if dres.Code != 0 {
		t.Fatalf("deliver failed: %s", dres.Log)
	}
	assert.Equal(t, []byte("ok"), dres.Data)
	assert.Equal(t, 2, handler.CallCount())

	// validator changes reported by the handler surface in the end block
	eres := b.EndBlock(abci.RequestEndBlock{})
	assert.Equal(t, diff, eres.ValidatorUpdates)

	// commit produces a non empty hash
	cmt := b.Commit()
	if len(cmt.Data) == 0 {
		t.Fatal("commit must produce an app hash")
	}
}

func TestBaseAppTxErrors(t *testing.T) {
	handler := &gaveltest.Handler{
		CheckErr:   errors.ErrUnauthorized,
		DeliverErr: errors.ErrUnauthorized,
	}
	b := testBaseApp(t, handler)

	// a transaction that cannot be decoded is rejected
	dres := b.DeliverTx(nil)
	if dres.Code == 0 {
		t.Fatal("an undecodable transaction must be rejected")
	}

	// a message without a registered handler is rejected
	dres = b.DeliverTx([]byte("test/missing"))
	if dres.Code == 0 {
		t.Fatal("an unroutable transaction must be rejected")
	}
	assert.Equal(t, errors.ErrNotFound.ABCICode(), dres.Code)

	// handler errors are converted into response codes
	cres := b.CheckTx([]byte("test/good"))
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), cres.Code)
	dres = b.DeliverTx([]byte("test/good"))
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), dres.Code)

	// failed transactions must not queue validator updates
	eres := b.EndBlock(abci.RequestEndBlock{})
	assert.Equal(t, 0, len(eres.ValidatorUpdates))
}
