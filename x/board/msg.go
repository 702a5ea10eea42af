package board

import (
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/migration"
)

const (
	pathCreateProposalMsg       = "board/create_proposal"
	pathApproveMsg              = "board/approve"
	pathStartDelayMsg           = "board/start_delay"
	pathConfirmMsg              = "board/confirm"
	pathExecuteMsg              = "board/execute"
	pathSetSecondaryMetadataMsg = "board/set_secondary_metadata"
	pathUpdateSettingsMsg       = "board/update_settings"
	pathAddMembersMsg           = "board/add_members"
	pathRemoveMembersMsg        = "board/remove_members"
)

func init() {
	migration.MustRegister(1, &CreateProposalMsg{}, migration.NoModification)
	migration.MustRegister(1, &ApproveMsg{}, migration.NoModification)
	migration.MustRegister(1, &StartDelayMsg{}, migration.NoModification)
	migration.MustRegister(1, &ConfirmMsg{}, migration.NoModification)
	migration.MustRegister(1, &ExecuteMsg{}, migration.NoModification)
	migration.MustRegister(1, &SetSecondaryMetadataMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateSettingsMsg{}, migration.NoModification)
	migration.MustRegister(1, &AddMembersMsg{}, migration.NoModification)
	migration.MustRegister(1, &RemoveMembersMsg{}, migration.NoModification)
}

func (CreateProposalMsg) Path() string {
	return pathCreateProposalMsg
}

func (m CreateProposalMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if len(m.RawActions) == 0 {
		return errors.Wrap(errors.ErrEmpty, "missing actions")
	}
	if len(m.RawActions) > maxActions {
		return errors.Wrapf(errors.ErrInput, "more than %d actions", maxActions)
	}
	for _, a := range m.RawActions {
		if len(a) == 0 {
			return errors.Wrap(errors.ErrEmpty, "empty action")
		}
	}
	if err := m.StartDate.Validate(); err != nil {
		return errors.Wrap(err, "start date")
	}
	if m.EndDate == 0 {
		return errors.Wrap(errors.ErrInput, "empty end date")
	}
	if err := m.EndDate.Validate(); err != nil {
		return errors.Wrap(err, "end date")
	}
	return nil
}

func (ApproveMsg) Path() string {
	return pathApproveMsg
}

func (m ApproveMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	return validateProposalID(m.ProposalID)
}

func (StartDelayMsg) Path() string {
	return pathStartDelayMsg
}

func (m StartDelayMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	return validateProposalID(m.ProposalID)
}

func (ConfirmMsg) Path() string {
	return pathConfirmMsg
}

func (m ConfirmMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	return validateProposalID(m.ProposalID)
}

func (ExecuteMsg) Path() string {
	return pathExecuteMsg
}

func (m ExecuteMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	return validateProposalID(m.ProposalID)
}

func (SetSecondaryMetadataMsg) Path() string {
	return pathSetSecondaryMetadataMsg
}

func (m SetSecondaryMetadataMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	return validateProposalID(m.ProposalID)
}

func (UpdateSettingsMsg) Path() string {
	return pathUpdateSettingsMsg
}

func (m UpdateSettingsMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	return errors.Wrap(m.Settings.Validate(), "settings")
}

func (AddMembersMsg) Path() string {
	return pathAddMembersMsg
}

func (m AddMembersMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if len(m.Addresses) == 0 {
		return errors.Wrap(errors.ErrEmpty, "missing addresses")
	}
	for _, a := range m.Addresses {
		if err := a.Validate(); err != nil {
			return errors.Wrapf(err, "address %q", a)
		}
	}
	return nil
}

func (RemoveMembersMsg) Path() string {
	return pathRemoveMembersMsg
}

func (m RemoveMembersMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if len(m.Addresses) == 0 {
		return errors.Wrap(errors.ErrEmpty, "missing addresses")
	}
	for _, a := range m.Addresses {
		if err := a.Validate(); err != nil {
			return errors.Wrapf(err, "address %q", a)
		}
	}
	return nil
}
