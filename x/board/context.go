package board

import (
	"context"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/x"
)

type contextKey int

const (
	contextKeyBoard contextKey = iota
)

// withProposalExecution marks the context so that the actions of an executed
// proposal authenticate as the proposal itself and as the board execution
// authority.
func withProposalExecution(ctx gavel.Context, proposalID []byte) gavel.Context {
	val, _ := ctx.Value(contextKeyBoard).([]gavel.Condition)
	return context.WithValue(ctx, contextKeyBoard,
		append(val, ProposalCondition(proposalID), ExecCondition()))
}

// ProposalCondition returns the condition identifying one executed proposal.
func ProposalCondition(proposalID []byte) gavel.Condition {
	return gavel.NewCondition("board", "proposal", proposalID)
}

// ExecCondition returns the condition shared by all executed proposals. Use
// its address as the settings admin to let the board govern itself.
func ExecCondition() gavel.Condition {
	return gavel.NewCondition("board", "exec", []byte("governance"))
}

// Authenticate gets/sets permissions on the given context key
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns permissions previously set on this context
func (a Authenticate) GetConditions(ctx gavel.Context) []gavel.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeyBoard).([]gavel.Condition)
	return val
}

// HasAddress returns true iff this address is in GetConditions
func (a Authenticate) HasAddress(ctx gavel.Context, addr gavel.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
