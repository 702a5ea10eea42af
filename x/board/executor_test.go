package board

import (
	"context"
	"testing"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/gaveltest"
	"github.com/iov-one/gavel/store"
)

func TestHandlerAsExecutor(t *testing.T) {
	h := &msgCapturingHandler{}
	h.DeliverResult = gavel.DeliverResult{Data: []byte("done")}
	exec := HandlerAsExecutor(h)

	db := store.MemStore()
	msg := &gaveltest.Msg{RoutePath: "test/action"}
	res, err := exec(context.Background(), db, msg)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if exp, got := "done", string(res.Data); exp != got {
		t.Errorf("expected %q but got %q", exp, got)
	}
	if exp, got := 1, len(h.msgs); exp != got {
		t.Fatalf("expected %d delivered messages but got %d", exp, got)
	}
	if h.msgs[0] != gavel.Msg(msg) {
		t.Error("expected the message to pass through unchanged")
	}
	if n := h.CheckCallCount(); n != 0 {
		t.Errorf("check called %d times", n)
	}
}

func TestExecTxCannotSerialize(t *testing.T) {
	msg := &gaveltest.Msg{RoutePath: "test/action"}
	tx := &execTx{msg: msg}

	got, err := tx.GetMsg()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if got != gavel.Msg(msg) {
		t.Error("expected the wrapped message")
	}
	if _, err := tx.Marshal(); !errors.ErrHuman.Is(err) {
		t.Fatalf("expected marshal to be refused, got %+v", err)
	}
	if err := tx.Unmarshal([]byte("x")); !errors.ErrHuman.Is(err) {
		t.Fatalf("expected unmarshal to be refused, got %+v", err)
	}
}

// msgCapturingHandler remembers every message delivered through it.
type msgCapturingHandler struct {
	gaveltest.Handler
	msgs []gavel.Msg
}

func (h *msgCapturingHandler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	h.msgs = append(h.msgs, msg)
	return h.Handler.Deliver(ctx, db, tx)
}
