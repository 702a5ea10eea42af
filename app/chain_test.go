package app

import (
	"context"
	"testing"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/gaveltest"
	"github.com/iov-one/gavel/gaveltest/assert"
	"github.com/iov-one/gavel/x/utils"
)

func TestChain(t *testing.T) {
	c1 := &gaveltest.Decorator{}
	c2 := &gaveltest.Decorator{}
	c3 := &gaveltest.Decorator{}
	h := &gaveltest.Handler{}

	stack := ChainDecorators(
		c1,
		utils.NewRecovery(),
		c2,
		panicAtHeightDecorator(6),
		c3,
	).WithHandler(h)

	// below the panic height all calls flow through the whole stack
	ctx := gavel.WithHeight(context.Background(), 4)
	if _, err := stack.Check(ctx, nil, nil); err != nil {
		t.Fatalf("check failed: %+v", err)
	}
	if _, err := stack.Deliver(ctx, nil, nil); err != nil {
		t.Fatalf("deliver failed: %+v", err)
	}

	assert.Equal(t, 2, c1.CallCount())
	assert.Equal(t, 2, c2.CallCount())
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// above the panic height the chain is cut short and the recovery
	// decorator reports the panic as an error
	ctx = gavel.WithHeight(context.Background(), 8)
	if _, err := stack.Check(ctx, nil, nil); !errors.ErrPanic.Is(err) {
		t.Fatalf("unexpected check error: %+v", err)
	}
	if _, err := stack.Deliver(ctx, nil, nil); !errors.ErrPanic.Is(err) {
		t.Fatalf("unexpected deliver error: %+v", err)
	}

	assert.Equal(t, 4, c1.CallCount())
	assert.Equal(t, 4, c2.CallCount())
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 2, h.CallCount())
}

func TestChainNilDecorators(t *testing.T) {
	c1 := &gaveltest.Decorator{}
	h := &gaveltest.Handler{}

	// nil decorators are allowed and cut out of the chain, both as
	// untyped nil and as a typed nil pointer
	var typedNil *gaveltest.Decorator
	stack := ChainDecorators(nil, c1).Chain(typedNil).WithHandler(h)

	if _, err := stack.Deliver(context.Background(), nil, nil); err != nil {
		t.Fatalf("deliver failed: %+v", err)
	}
	assert.Equal(t, 1, c1.CallCount())
	assert.Equal(t, 1, h.CallCount())
}

// panicAtHeightDecorator panics during check and deliver if the context
// height is at least its own value.
type panicAtHeightDecorator int64

var _ gavel.Decorator = panicAtHeightDecorator(0)

func (ph panicAtHeightDecorator) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx, next gavel.Checker) (*gavel.CheckResult, error) {
	if val, _ := gavel.GetHeight(ctx); val >= int64(ph) {
		panic("too high")
	}
	return next.Check(ctx, db, tx)
}

func (ph panicAtHeightDecorator) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx, next gavel.Deliverer) (*gavel.DeliverResult, error) {
	if val, _ := gavel.GetHeight(ctx); val >= int64(ph) {
		panic("too high")
	}
	return next.Deliver(ctx, db, tx)
}
