package app

import (
	"testing"

	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/gaveltest"
	"github.com/iov-one/gavel/gaveltest/assert"
)

func TestRouterSuccess(t *testing.T) {
	r := NewRouter()

	var handler gaveltest.Handler
	r.Handle("test/good", &handler)

	tx := &gaveltest.Tx{Msg: &gaveltest.Msg{RoutePath: "test/good"}}

	if _, err := r.Check(nil, nil, tx); err != nil {
		t.Fatalf("check failed: %+v", err)
	}
	if _, err := r.Deliver(nil, nil, tx); err != nil {
		t.Fatalf("deliver failed: %+v", err)
	}
	assert.Equal(t, 2, handler.CallCount())
}

func TestRouterNoHandler(t *testing.T) {
	r := NewRouter()

	tx := &gaveltest.Tx{Msg: &gaveltest.Msg{RoutePath: "test/missing"}}

	if _, err := r.Check(nil, nil, tx); !errors.ErrNotFound.Is(err) {
		t.Fatalf("expected a not found error, got %+v", err)
	}
	if _, err := r.Deliver(nil, nil, tx); !errors.ErrNotFound.Is(err) {
		t.Fatalf("expected a not found error, got %+v", err)
	}

	// a handler lookup must never return nil
	if h := r.Handler("test/missing"); h == nil {
		t.Fatal("nil handler returned")
	}
}

func TestRouterRegistrationPanics(t *testing.T) {
	r := NewRouter()

	var handler gaveltest.Handler
	r.Handle("test/good", &handler)

	// registering a path twice must panic
	assert.Panics(t, func() { r.Handle("test/good", &handler) })

	// as must a path with forbidden characters
	assert.Panics(t, func() { r.Handle("test:good", &handler) })
	assert.Panics(t, func() { r.Handle("", &handler) })
}
