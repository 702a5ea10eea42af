package board

import (
	"github.com/iov-one/gavel"
)

// GetProposal loads the proposal for the given id. If it does not exist this
// returns ErrNotFound.
func GetProposal(db gavel.ReadOnlyKVStore, proposalID []byte) (*Proposal, error) {
	return NewProposalBucket().GetProposal(db, proposalID)
}

// ProposalIDByIndex returns the identifier of the n-th created proposal.
// Positions are dense and start at zero.
func ProposalIDByIndex(db gavel.ReadOnlyKVStore, idx uint64) ([]byte, error) {
	return NewProposalIndexBucket().ProposalIDByIndex(db, idx)
}

// ProposalByIndex loads the n-th created proposal.
func ProposalByIndex(db gavel.ReadOnlyKVStore, idx uint64) (*Proposal, error) {
	id, err := ProposalIDByIndex(db, idx)
	if err != nil {
		return nil, err
	}
	return GetProposal(db, id)
}

// IsMember returns true if the address is a board member right now.
func IsMember(db gavel.ReadOnlyKVStore, addr gavel.Address) (bool, error) {
	m, err := NewMemberBucket().GetMember(db, addr)
	if err != nil {
		return false, err
	}
	return m != nil && m.MemberNow(), nil
}

// IsMemberAt returns true if the address was a board member at the given
// block height.
func IsMemberAt(db gavel.ReadOnlyKVStore, addr gavel.Address, height int64) (bool, error) {
	m, err := NewMemberBucket().GetMember(db, addr)
	if err != nil {
		return false, err
	}
	return m != nil && m.MemberAt(height), nil
}

// MemberCount returns the current number of board members.
func MemberCount(db gavel.ReadOnlyKVStore) (uint32, error) {
	r, err := NewRosterBucket().GetRoster(db)
	if err != nil {
		return 0, err
	}
	return r.MemberCount, nil
}

// HasApproved returns true if the address already cast an approval on the
// proposal.
func HasApproved(db gavel.ReadOnlyKVStore, proposalID []byte, addr gavel.Address) (bool, error) {
	return NewApprovalBucket().Endorsed(db, proposalID, addr)
}

// HasConfirmed returns true if the address already cast a confirmation on
// the proposal.
func HasConfirmed(db gavel.ReadOnlyKVStore, proposalID []byte, addr gavel.Address) (bool, error) {
	return NewConfirmBucket().Endorsed(db, proposalID, addr)
}

// CanApprove returns true if the address may cast an approval on the
// proposal at the given time. An approval can be cast while the proposal is
// open and the cooling-off delay was not started, by an address that was a
// member at the snapshot height and did not approve before.
func CanApprove(db gavel.ReadOnlyKVStore, proposalID []byte, signer gavel.Address, now gavel.UnixTime) (bool, error) {
	p, err := GetProposal(db, proposalID)
	if err != nil {
		return false, err
	}
	return canApproveProposal(db, p, proposalID, signer, now)
}

func canApproveProposal(db gavel.ReadOnlyKVStore, p *Proposal, proposalID []byte, signer gavel.Address, now gavel.UnixTime) (bool, error) {
	if !p.Open(now) || p.DelayStart != 0 {
		return false, nil
	}
	ok, err := IsMemberAt(db, signer, p.Parameters.SnapshotHeight)
	if err != nil || !ok {
		return false, err
	}
	done, err := HasApproved(db, proposalID, signer)
	if err != nil {
		return false, err
	}
	return !done, nil
}

// CanConfirm returns true if the address may cast a confirmation on the
// proposal at the given time. A confirmation can be cast while the proposal
// is open, once the full cooling-off delay has elapsed, by an address that
// was a member at the snapshot height and did not confirm before. Emergency
// proposals never start the delay, so they can never be confirmed.
func CanConfirm(db gavel.ReadOnlyKVStore, proposalID []byte, signer gavel.Address, now gavel.UnixTime) (bool, error) {
	p, err := GetProposal(db, proposalID)
	if err != nil {
		return false, err
	}
	return canConfirmProposal(db, p, proposalID, signer, now)
}

func canConfirmProposal(db gavel.ReadOnlyKVStore, p *Proposal, proposalID []byte, signer gavel.Address, now gavel.UnixTime) (bool, error) {
	if !p.Open(now) || !p.DelayElapsed(now) {
		return false, nil
	}
	ok, err := IsMemberAt(db, signer, p.Parameters.SnapshotHeight)
	if err != nil || !ok {
		return false, err
	}
	done, err := HasConfirmed(db, proposalID, signer)
	if err != nil {
		return false, err
	}
	return !done, nil
}

// CanExecute returns true if the address may execute the proposal at the
// given time. The proposal must be open and must have cleared the approval
// threshold of its path, for the standard path also the confirmation
// threshold. With member only execution enabled the executor must have been
// a member at the snapshot height.
func CanExecute(db gavel.ReadOnlyKVStore, proposalID []byte, signer gavel.Address, now gavel.UnixTime) (bool, error) {
	p, err := GetProposal(db, proposalID)
	if err != nil {
		return false, err
	}
	return canExecuteProposal(db, p, signer, now)
}

func canExecuteProposal(db gavel.ReadOnlyKVStore, p *Proposal, signer gavel.Address, now gavel.UnixTime) (bool, error) {
	if !p.Open(now) {
		return false, nil
	}
	if p.Parameters.MemberOnlyExecution {
		ok, err := IsMemberAt(db, signer, p.Parameters.SnapshotHeight)
		if err != nil || !ok {
			return false, err
		}
	}
	if p.Parameters.Emergency {
		return p.Approvals >= p.Parameters.EmergencyMinApprovals, nil
	}
	return p.Approvals >= p.Parameters.MinApprovals &&
		p.Confirmations >= p.Parameters.MinConfirmations, nil
}
