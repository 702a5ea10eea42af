package orm

import (
	"github.com/iov-one/gavel/errors"
)

var _ Model = (*Counter)(nil)

// NewCounter returns a counter with the given initial state.
func NewCounter(count int64) *Counter {
	return &Counter{Count: count}
}

// Copy produces a new copy to fulfill the Model interface
func (c *Counter) Copy() Model {
	return &Counter{
		Count: c.Count,
	}
}

// Validate returns an error if the counter state is not usable.
func (c *Counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrState, "count cannot be negative")
	}
	return nil
}
