package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If given errors contain a multi error instance, it is flattened so that the
// result is never a nested multi error. The error returned by this function
// is a multi error only if more than one non-nil error was given.
func Append(errs ...error) error {
	var res multiError
	for _, e := range errs {
		switch m := e.(type) {
		case nil:
			continue
		case multiError:
			res = append(res, m...)
		default:
			if !isNilErr(e) {
				res = append(res, e)
			}
		}
	}

	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiError represents a group of errors. It is created using the Append
// function and is never empty.
type multiError []error

var _ unpacker = (multiError)(nil)

func (errs multiError) Error() string {
	if len(errs) == 1 {
		return fmt.Sprintf("1 error occurred:\n\t* %s\n", errs[0])
	}

	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n",
		len(errs), strings.Join(points, "\n\t"))
}

// ABCICode returns the code of the first error, consistent with the
// fail-fast validation approach used across handlers.
func (errs multiError) ABCICode() uint32 {
	if len(errs) == 0 {
		return SuccessABCICode
	}
	return abciCode(errs[0])
}

// Cause returns the first clubbed error, consistent with ABCICode.
func (errs multiError) Cause() error {
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

// Unpack implements the unpacker interface and returns all clubbed errors.
func (errs multiError) Unpack() []error {
	return errs
}

// unpacker is implemented by errors that represent a group of errors. Unlike
// causer it describes a collection, not a chain.
type unpacker interface {
	Unpack() []error
}
