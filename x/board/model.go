package board

import (
	"crypto/sha256"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/migration"
	"github.com/iov-one/gavel/orm"
)

func init() {
	migration.MustRegister(1, &Settings{}, migration.NoModification)
	migration.MustRegister(1, &Member{}, migration.NoModification)
	migration.MustRegister(1, &Roster{}, migration.NoModification)
	migration.MustRegister(1, &Proposal{}, migration.NoModification)
	migration.MustRegister(1, &ProposalIndex{}, migration.NoModification)
	migration.MustRegister(1, &Endorsement{}, migration.NoModification)
}

const (
	// maxMembers is the highest number of members a board can hold.
	// Approval and confirmation counters are 16 bit quantities. Keeping
	// the member list below this ceiling guarantees that incrementing
	// them cannot overflow.
	maxMembers = 1<<16 - 1

	// maxActions is the highest number of messages a proposal can carry.
	// The allow failure bitmap addresses actions by bit position and
	// provides 64 slots.
	maxActions = 64

	// proposalIDLength is the length of a proposal identifier, derived
	// as a sha256 checksum of the creation fingerprint.
	proposalIDLength = sha256.Size
)

var _ orm.Model = (*Member)(nil)
var _ orm.Model = (*Roster)(nil)
var _ orm.Model = (*Proposal)(nil)
var _ orm.Model = (*ProposalIndex)(nil)
var _ orm.Model = (*Endorsement)(nil)

func (m *Settings) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Admin", m.Admin.Validate())
	if m.MinApprovals > maxMembers {
		errs = errors.AppendField(errs, "MinApprovals",
			errors.Wrapf(errors.ErrInput, "higher than %d", maxMembers))
	}
	if m.MinConfirmations > maxMembers {
		errs = errors.AppendField(errs, "MinConfirmations",
			errors.Wrapf(errors.ErrInput, "higher than %d", maxMembers))
	}
	if m.EmergencyMinApprovals > maxMembers {
		errs = errors.AppendField(errs, "EmergencyMinApprovals",
			errors.Wrapf(errors.ErrInput, "higher than %d", maxMembers))
	}
	errs = errors.AppendField(errs, "DelayDuration", m.DelayDuration.Validate())
	errs = errors.AppendField(errs, "MinExtraDuration", m.MinExtraDuration.Validate())
	if m.LastChangeHeight < 0 {
		errs = errors.AppendField(errs, "LastChangeHeight",
			errors.Wrap(errors.ErrInput, "negative height"))
	}
	return errs
}

// validateThresholds enforces the threshold rules that depend on the current
// member count. The checks run in a fixed order so that a configuration
// violating more than one rule reports a deterministic failure.
func validateThresholds(s *Settings, memberCount uint32) error {
	if s.MinApprovals > s.EmergencyMinApprovals {
		return errors.Wrapf(ErrMinApprovals,
			"min approvals %d above emergency limit %d",
			s.MinApprovals, s.EmergencyMinApprovals)
	}
	if s.MinApprovals > memberCount || s.EmergencyMinApprovals > memberCount {
		return errors.Wrapf(ErrMinApprovals,
			"approval thresholds above member count %d", memberCount)
	}
	if s.MinApprovals < 1 || s.EmergencyMinApprovals < 1 || s.MinConfirmations < 1 {
		return errors.Wrap(ErrMinApprovals, "thresholds below limit 1")
	}
	return nil
}

func (m *Member) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Address", m.Address.Validate())
	if len(m.Checkpoints) == 0 {
		errs = errors.AppendField(errs, "Checkpoints",
			errors.Wrap(errors.ErrEmpty, "at least one checkpoint required"))
	}
	var prev int64 = -1
	for _, c := range m.Checkpoints {
		if c.Height < 0 {
			errs = errors.AppendField(errs, "Checkpoints",
				errors.Wrap(errors.ErrInput, "negative height"))
			break
		}
		if c.Height < prev {
			errs = errors.AppendField(errs, "Checkpoints",
				errors.Wrap(errors.ErrState, "heights out of order"))
			break
		}
		prev = c.Height
	}
	return errs
}

func (m *Member) Copy() orm.Model {
	cps := make([]MemberCheckpoint, len(m.Checkpoints))
	copy(cps, m.Checkpoints)
	return &Member{
		Metadata:    m.Metadata.Copy(),
		Address:     m.Address.Clone(),
		Checkpoints: cps,
	}
}

// MemberAt returns true if the checkpoint history declares membership at
// the given block height. Heights before the first checkpoint are never
// member.
func (m *Member) MemberAt(height int64) bool {
	var member bool
	for _, c := range m.Checkpoints {
		if c.Height > height {
			break
		}
		member = c.Member
	}
	return member
}

// MemberNow returns true if the most recent checkpoint declares membership.
func (m *Member) MemberNow() bool {
	if len(m.Checkpoints) == 0 {
		return false
	}
	return m.Checkpoints[len(m.Checkpoints)-1].Member
}

func (m *Roster) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.MemberCount > maxMembers {
		errs = errors.AppendField(errs, "MemberCount",
			errors.Wrapf(errors.ErrInput, "higher than %d", maxMembers))
	}
	return errs
}

func (m *Roster) Copy() orm.Model {
	return &Roster{
		Metadata:    m.Metadata.Copy(),
		MemberCount: m.MemberCount,
	}
}

func (m *ProposalParameters) Validate() error {
	var errs error
	if m.MinApprovals < 1 {
		errs = errors.AppendField(errs, "MinApprovals",
			errors.Wrap(errors.ErrInput, "lower than 1"))
	}
	if m.MinConfirmations < 1 {
		errs = errors.AppendField(errs, "MinConfirmations",
			errors.Wrap(errors.ErrInput, "lower than 1"))
	}
	if m.EmergencyMinApprovals < m.MinApprovals {
		errs = errors.AppendField(errs, "EmergencyMinApprovals",
			errors.Wrap(errors.ErrInput, "lower than min approvals"))
	}
	if m.SnapshotHeight < 0 {
		errs = errors.AppendField(errs, "SnapshotHeight",
			errors.Wrap(errors.ErrInput, "negative height"))
	}
	errs = errors.AppendField(errs, "StartDate", m.StartDate.Validate())
	errs = errors.AppendField(errs, "EndDate", m.EndDate.Validate())
	if m.EndDate < m.StartDate {
		errs = errors.AppendField(errs, "EndDate",
			errors.Wrap(errors.ErrInput, "before start date"))
	}
	errs = errors.AppendField(errs, "DelayDuration", m.DelayDuration.Validate())
	errs = errors.AppendField(errs, "MinExtraDuration", m.MinExtraDuration.Validate())
	return errs
}

func (m *Proposal) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Parameters", m.Parameters.Validate())
	errs = errors.AppendField(errs, "Creator", m.Creator.Validate())
	if len(m.RawActions) > maxActions {
		errs = errors.AppendField(errs, "RawActions",
			errors.Wrapf(errors.ErrInput, "more than %d actions", maxActions))
	}
	for _, a := range m.RawActions {
		if len(a) == 0 {
			errs = errors.AppendField(errs, "RawActions",
				errors.Wrap(errors.ErrEmpty, "empty action"))
			break
		}
	}
	if m.Approvals > maxMembers {
		errs = errors.AppendField(errs, "Approvals",
			errors.Wrapf(errors.ErrInput, "higher than %d", maxMembers))
	}
	if m.Confirmations > maxMembers {
		errs = errors.AppendField(errs, "Confirmations",
			errors.Wrapf(errors.ErrInput, "higher than %d", maxMembers))
	}
	errs = errors.AppendField(errs, "DelayStart", m.DelayStart.Validate())
	return errs
}

func (m *Proposal) Copy() orm.Model {
	actions := make([][]byte, len(m.RawActions))
	for i, a := range m.RawActions {
		actions[i] = append([]byte(nil), a...)
	}
	return &Proposal{
		Metadata:          m.Metadata.Copy(),
		Parameters:        m.Parameters,
		Creator:           m.Creator.Clone(),
		RawMetadata:       append([]byte(nil), m.RawMetadata...),
		SecondaryMetadata: append([]byte(nil), m.SecondaryMetadata...),
		RawActions:        actions,
		AllowFailureMap:   m.AllowFailureMap,
		Approvals:         m.Approvals,
		Confirmations:     m.Confirmations,
		Executed:          m.Executed,
		DelayStart:        m.DelayStart,
		Index:             m.Index,
	}
}

// Open returns true if the proposal was not executed yet and the given time
// is within the voting window. Both window boundaries are inclusive.
func (m *Proposal) Open(now gavel.UnixTime) bool {
	return !m.Executed && m.Parameters.StartDate <= now && now <= m.Parameters.EndDate
}

// DelayElapsed returns true if the cooling-off delay was started and the
// full delay duration has passed at the given time.
func (m *Proposal) DelayElapsed(now gavel.UnixTime) bool {
	if m.DelayStart == 0 {
		return false
	}
	return now >= m.DelayStart.Add(m.Parameters.DelayDuration.Duration())
}

func (m *ProposalIndex) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "ProposalID", validateProposalID(m.ProposalID))
	return errs
}

func (m *ProposalIndex) Copy() orm.Model {
	return &ProposalIndex{
		Metadata:   m.Metadata.Copy(),
		ProposalID: append([]byte(nil), m.ProposalID...),
	}
}

func (m *Endorsement) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "ProposalID", validateProposalID(m.ProposalID))
	errs = errors.AppendField(errs, "Signer", m.Signer.Validate())
	errs = errors.AppendField(errs, "CastAt", m.CastAt.Validate())
	return errs
}

func (m *Endorsement) Copy() orm.Model {
	return &Endorsement{
		Metadata:   m.Metadata.Copy(),
		ProposalID: append([]byte(nil), m.ProposalID...),
		Signer:     m.Signer.Clone(),
		CastAt:     m.CastAt,
	}
}

func validateProposalID(id []byte) error {
	if len(id) != proposalIDLength {
		return errors.Wrapf(errors.ErrInput, "must be %d bytes", proposalIDLength)
	}
	return nil
}

// proposalID derives the deterministic identifier of a proposal from its
// creation fingerprint. The same creator submitting the same payload within
// the same block produces the same identifier, which serves as a replay
// guard. Any other combination yields a distinct value.
func proposalID(creator gavel.Address, rawMetadata []byte, rawActions [][]byte, height int64) ([]byte, error) {
	fp := ProposalFingerprint{
		Creator:     creator,
		RawMetadata: rawMetadata,
		RawActions:  rawActions,
		Height:      height,
	}
	raw, err := fp.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal fingerprint")
	}
	id := sha256.Sum256(raw)
	return id[:], nil
}
