package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
)

// Router allows us to register many handlers with different
// paths and then direct each message to the registered one.
type Router struct {
	routes map[string]gavel.Handler
}

var _ gavel.Registry = (*Router)(nil)

// isPath ensures the routes make sense. Must match the allowed
// characters of a message path.
var isPath = regexp.MustCompile(`^[0-9A-Za-z_\-/]+$`).MatchString

// NewRouter initializes a router with no routes.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]gavel.Handler, 10),
	}
}

// Handle adds a new Handler for the given path. This function panics if a
// handler for the given path was already registered or if the path contains
// invalid characters.
func (r *Router) Handle(path string, h gavel.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the registered Handler for this path. If no handler is
// registered a notFoundHandler is returned. This function never returns nil.
func (r *Router) Handler(path string) gavel.Handler {
	h, ok := r.routes[path]
	if !ok {
		return notFoundHandler(path)
	}
	return h
}

// Check dispatches the given transaction to the handler registered for the
// path of the message that this transaction carries.
func (r *Router) Check(ctx gavel.Context, store gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.Handler(msg.Path()).Check(ctx, store, tx)
}

// Deliver dispatches the given transaction to the handler registered for the
// path of the message that this transaction carries.
func (r *Router) Deliver(ctx gavel.Context, store gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.Handler(msg.Path()).Deliver(ctx, store, tx)
}

// notFoundHandler always returns ErrNotFound, regardless of the arguments
// provided.
type notFoundHandler string

var _ gavel.Handler = notFoundHandler("")

func (path notFoundHandler) Check(ctx gavel.Context, store gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}

func (path notFoundHandler) Deliver(ctx gavel.Context, store gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}
