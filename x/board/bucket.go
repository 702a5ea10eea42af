package board

import (
	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/gconf"
	"github.com/iov-one/gavel/migration"
	"github.com/iov-one/gavel/orm"
)

const packageName = "board"

// ProposalBucket stores the proposals, keyed by their deterministic
// identifier.
type ProposalBucket struct {
	migration.Bucket
}

// NewProposalBucket returns a bucket for managing proposals.
func NewProposalBucket() *ProposalBucket {
	return &ProposalBucket{
		Bucket: migration.NewBucket(packageName, "proposals", orm.NewSimpleObj(nil, &Proposal{})),
	}
}

// GetProposal loads the proposal for the given id. If it does not exist this
// returns ErrNotFound.
func (b *ProposalBucket) GetProposal(db gavel.ReadOnlyKVStore, id []byte) (*Proposal, error) {
	obj, err := b.Get(db, id)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load proposal %x", id)
	}
	return asProposal(obj)
}

func asProposal(obj orm.Object) (*Proposal, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrNotFound, "unknown proposal id")
	}
	p, ok := obj.Value().(*Proposal)
	if !ok {
		return nil, errors.Wrap(errors.ErrModel, "invalid type stored, expected proposal")
	}
	return p, nil
}

// Update stores the given proposal under its id.
func (b *ProposalBucket) Update(db gavel.KVStore, id []byte, p *Proposal) error {
	obj := orm.NewSimpleObj(id, p)
	if err := b.Save(db, obj); err != nil {
		return errors.Wrap(err, "cannot store proposal")
	}
	return nil
}

// ProposalIndexBucket maintains the dense creation order index of proposal
// identifiers. Keys are 8 byte big endian encoded positions, starting at
// zero, so that the n-th created proposal can be looked up directly.
type ProposalIndexBucket struct {
	migration.Bucket
	idx orm.Sequence
}

// NewProposalIndexBucket returns a bucket for enumerating proposals in
// creation order.
func NewProposalIndexBucket() *ProposalIndexBucket {
	b := migration.NewBucket(packageName, "propidx", orm.NewSimpleObj(nil, &ProposalIndex{}))
	return &ProposalIndexBucket{
		Bucket: b,
		idx:    b.Sequence("id"),
	}
}

// Append assigns the next creation order position to the given proposal id
// and returns it. Positions are dense and start at zero.
func (b *ProposalIndexBucket) Append(db gavel.KVStore, proposalID []byte) (uint64, error) {
	v, err := b.idx.NextInt(db)
	if err != nil {
		return 0, errors.Wrap(err, "index sequence")
	}
	// The sequence starts counting at one while positions start at zero.
	pos := v - 1
	obj := orm.NewSimpleObj(orm.EncodeSequence(pos), &ProposalIndex{
		Metadata:   &gavel.Metadata{Schema: 1},
		ProposalID: proposalID,
	})
	if err := b.Save(db, obj); err != nil {
		return 0, errors.Wrap(err, "cannot store proposal index")
	}
	return uint64(pos), nil
}

// ProposalIDByIndex returns the proposal identifier stored at the given
// creation order position.
func (b *ProposalIndexBucket) ProposalIDByIndex(db gavel.ReadOnlyKVStore, idx uint64) ([]byte, error) {
	obj, err := b.Get(db, orm.EncodeSequence(int64(idx)))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load index %d", idx)
	}
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no proposal at index %d", idx)
	}
	rec, ok := obj.Value().(*ProposalIndex)
	if !ok {
		return nil, errors.Wrap(errors.ErrModel, "invalid type stored, expected proposal index")
	}
	return rec.ProposalID, nil
}

// MemberBucket stores the membership checkpoint history, keyed by the member
// address.
type MemberBucket struct {
	migration.Bucket
}

// NewMemberBucket returns a bucket for managing member histories.
func NewMemberBucket() *MemberBucket {
	return &MemberBucket{
		Bucket: migration.NewBucket(packageName, "members", orm.NewSimpleObj(nil, &Member{})),
	}
}

// GetMember loads the checkpoint history of the given address. An address
// that was never a member has no history and returns nil without an error.
func (b *MemberBucket) GetMember(db gavel.ReadOnlyKVStore, addr gavel.Address) (*Member, error) {
	obj, err := b.Get(db, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load member %q", addr)
	}
	if obj == nil || obj.Value() == nil {
		return nil, nil
	}
	m, ok := obj.Value().(*Member)
	if !ok {
		return nil, errors.Wrap(errors.ErrModel, "invalid type stored, expected member")
	}
	return m, nil
}

// Update stores the given member history under its address.
func (b *MemberBucket) Update(db gavel.KVStore, m *Member) error {
	obj := orm.NewSimpleObj(m.Address, m)
	if err := b.Save(db, obj); err != nil {
		return errors.Wrap(err, "cannot store member")
	}
	return nil
}

// rosterKey is the fixed key of the only roster record.
var rosterKey = []byte("board")

// RosterBucket stores a single record with the current member count.
type RosterBucket struct {
	migration.Bucket
}

// NewRosterBucket returns a bucket for managing the member count record.
func NewRosterBucket() *RosterBucket {
	return &RosterBucket{
		Bucket: migration.NewBucket(packageName, "roster", orm.NewSimpleObj(nil, &Roster{})),
	}
}

// GetRoster loads the member count record. Before the first membership
// change a default record with a zero count is returned.
func (b *RosterBucket) GetRoster(db gavel.ReadOnlyKVStore) (*Roster, error) {
	obj, err := b.Get(db, rosterKey)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load roster")
	}
	if obj == nil || obj.Value() == nil {
		return &Roster{Metadata: &gavel.Metadata{Schema: 1}}, nil
	}
	r, ok := obj.Value().(*Roster)
	if !ok {
		return nil, errors.Wrap(errors.ErrModel, "invalid type stored, expected roster")
	}
	return r, nil
}

// Update stores the given member count record.
func (b *RosterBucket) Update(db gavel.KVStore, r *Roster) error {
	obj := orm.NewSimpleObj(rosterKey, r)
	if err := b.Save(db, obj); err != nil {
		return errors.Wrap(err, "cannot store roster")
	}
	return nil
}

// EndorsementBucket stores one record per cast endorsement, keyed by the
// proposal id with the signer address appended. Two instances exist, one for
// approvals and one for confirmations.
type EndorsementBucket struct {
	migration.Bucket
}

// NewApprovalBucket returns the bucket holding cast approvals.
func NewApprovalBucket() *EndorsementBucket {
	return &EndorsementBucket{
		Bucket: migration.NewBucket(packageName, "approvals", orm.NewSimpleObj(nil, &Endorsement{})),
	}
}

// NewConfirmBucket returns the bucket holding cast confirmations.
func NewConfirmBucket() *EndorsementBucket {
	return &EndorsementBucket{
		Bucket: migration.NewBucket(packageName, "confirms", orm.NewSimpleObj(nil, &Endorsement{})),
	}
}

func endorsementKey(proposalID []byte, signer gavel.Address) []byte {
	key := make([]byte, 0, len(proposalID)+len(signer))
	key = append(key, proposalID...)
	return append(key, signer...)
}

// Endorsed returns true if the signer has already endorsed the proposal.
func (b *EndorsementBucket) Endorsed(db gavel.ReadOnlyKVStore, proposalID []byte, signer gavel.Address) (bool, error) {
	switch err := b.Has(db, endorsementKey(proposalID, signer)); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// Endorse stores an endorsement record of the signer for the proposal.
func (b *EndorsementBucket) Endorse(db gavel.KVStore, proposalID []byte, signer gavel.Address, now gavel.UnixTime) error {
	e := &Endorsement{
		Metadata:   &gavel.Metadata{Schema: 1},
		ProposalID: proposalID,
		Signer:     signer,
		CastAt:     now,
	}
	obj := orm.NewSimpleObj(endorsementKey(proposalID, signer), e)
	if err := b.Save(db, obj); err != nil {
		return errors.Wrap(err, "cannot store endorsement")
	}
	return nil
}

// loadSettings returns the current board configuration.
func loadSettings(db gavel.ReadOnlyKVStore) (*Settings, error) {
	var s Settings
	if err := gconf.Load(db, packageName, &s); err != nil {
		return nil, errors.Wrap(err, "load settings")
	}
	return &s, nil
}

// saveSettings persists the given board configuration.
func saveSettings(db gavel.KVStore, s *Settings) error {
	if err := gconf.Save(db, packageName, s); err != nil {
		return errors.Wrap(err, "save settings")
	}
	return nil
}
