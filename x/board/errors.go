package board

import (
	"github.com/iov-one/gavel/errors"
)

// Error codes
// x/board reserves 1100 ~ 1119.

var (
	// ErrCreateForbidden is returned when the creator is not allowed to
	// open a proposal, when the membership snapshot is invalidated by a
	// same-block settings change or when the derived proposal id already
	// exists.
	ErrCreateForbidden = errors.Register(1100, "proposal creation forbidden")

	// ErrApproveForbidden is returned when the caller may not cast an
	// approval for the proposal in its current state.
	ErrApproveForbidden = errors.Register(1101, "approval cast forbidden")

	// ErrConfirmForbidden is returned when the caller may not cast a
	// confirmation for the proposal in its current state.
	ErrConfirmForbidden = errors.Register(1102, "confirmation cast forbidden")

	// ErrExecuteForbidden is returned when the proposal does not qualify
	// for execution.
	ErrExecuteForbidden = errors.Register(1103, "proposal execution forbidden")

	// ErrDelayForbidden is returned when the cooling-off delay cannot be
	// started, including a second start attempt.
	ErrDelayForbidden = errors.Register(1104, "delay cannot be started")

	// ErrMetadataForbidden is returned when secondary metadata is written
	// to a closed proposal.
	ErrMetadataForbidden = errors.Register(1105, "secondary metadata cannot be set")

	// ErrDateOutOfBounds is returned when a proposal date violates its
	// limit.
	ErrDateOutOfBounds = errors.Register(1106, "date out of bounds")

	// ErrMinApprovals is returned when a threshold violates its limit.
	ErrMinApprovals = errors.Register(1107, "approval threshold out of bounds")

	// ErrAddressListSize is returned when a membership change violates
	// the member list size bounds.
	ErrAddressListSize = errors.Register(1108, "member list size out of bounds")

	// ErrInsufficientApprovals is returned when the delay is started
	// before the approval threshold is reached.
	ErrInsufficientApprovals = errors.Register(1109, "insufficient approvals")

	// ErrNotMember is returned when the address is not in the member
	// list.
	ErrNotMember = errors.Register(1110, "not in member list")
)
