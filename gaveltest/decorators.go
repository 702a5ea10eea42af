package gaveltest

import "github.com/iov-one/gavel"

// Decorator is a mock implementation of the gavel.Decorator interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding method.
// If error attributes are not set then wrapped handler method is called and
// its result returned.
// Each method call is counted. Regardless of the method call result the
// counter is incremented.
type Decorator struct {
	checkCall int
	// CheckErr if set is returned by the Check method before calling
	// the wrapped handler.
	CheckErr error

	deliverCall int
	// DeliverErr if set is returned by the Deliver method before calling
	// the wrapped handler.
	DeliverErr error
}

var _ gavel.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx, next gavel.Checker) (*gavel.CheckResult, error) {
	d.checkCall++

	if d.CheckErr != nil {
		return &gavel.CheckResult{}, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx, next gavel.Deliverer) (*gavel.DeliverResult, error) {
	d.deliverCall++

	if d.DeliverErr != nil {
		return &gavel.DeliverResult{}, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

func Decorate(h gavel.Handler, d gavel.Decorator) gavel.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn gavel.Handler
	dc gavel.Decorator
}

var _ gavel.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
