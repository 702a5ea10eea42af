package utils

import (
	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
)

// Recovery is a decorator to recover from panics in transactions,
// so we can log them as errors
type Recovery struct{}

var _ gavel.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (r Recovery) Check(ctx gavel.Context, store gavel.KVStore, tx gavel.Tx, next gavel.Checker) (_ *gavel.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (r Recovery) Deliver(ctx gavel.Context, store gavel.KVStore, tx gavel.Tx, next gavel.Deliverer) (_ *gavel.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
