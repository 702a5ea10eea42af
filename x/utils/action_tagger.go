package utils

import (
	"github.com/iov-one/gavel"
	"github.com/tendermint/tendermint/libs/common"
)

// ActionTagger will inspect the message being executed and
// add a tag `action = msg.Path()`. This should be applied as
// a decorator so clients have a standard way to search / subscribe
// to eg. proposal creation.
//
// Note that for best results, this should be at the end of the
// ChainDecorators call. You will also want to wrap the proposal
// executor with this, so every action applied by an executed
// proposal shows up in a search as well.
type ActionTagger struct{}

var _ gavel.Decorator = ActionTagger{}

// ActionKey is used by ActionTagger as the Key in the Tag it appends
const ActionKey = "action"

// NewActionTagger creates a ActionTagger decorator
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check just passes the request along
func (ActionTagger) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx, next gavel.Checker) (*gavel.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver appends a tag on the result if there is a success.
func (ActionTagger) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx, next gavel.Deliverer) (*gavel.DeliverResult, error) {
	// if we error in reporting, let's do so early before dispatching
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}

	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	tag := common.KVPair{
		Key:   []byte(ActionKey),
		Value: []byte(msg.Path()),
	}
	res.Tags = append(res.Tags, tag)
	return res, nil
}
