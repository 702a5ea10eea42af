package board

import (
	"bytes"
	"testing"
	"time"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
)

func TestCreateProposalMsgValidate(t *testing.T) {
	valid := func(mod func(*CreateProposalMsg)) *CreateProposalMsg {
		msg := &CreateProposalMsg{
			Metadata:    &gavel.Metadata{Schema: 1},
			RawMetadata: []byte("payload"),
			RawActions:  [][]byte{[]byte("first")},
			StartDate:   100,
			EndDate:     200,
		}
		if mod != nil {
			mod(msg)
		}
		return msg
	}
	manyActions := make([][]byte, maxActions+1)
	for i := range manyActions {
		manyActions[i] = []byte{byte(i)}
	}
	specs := map[string]struct {
		Msg     gavel.Msg
		WantErr *errors.Error
	}{
		"All good": {
			Msg: valid(nil),
		},
		"No start date is allowed": {
			Msg: valid(func(msg *CreateProposalMsg) { msg.StartDate = 0 }),
		},
		"Missing metadata": {
			Msg:     valid(func(msg *CreateProposalMsg) { msg.Metadata = nil }),
			WantErr: errors.ErrMetadata,
		},
		"Missing actions": {
			Msg:     valid(func(msg *CreateProposalMsg) { msg.RawActions = nil }),
			WantErr: errors.ErrEmpty,
		},
		"Too many actions": {
			Msg:     valid(func(msg *CreateProposalMsg) { msg.RawActions = manyActions }),
			WantErr: errors.ErrInput,
		},
		"Empty action": {
			Msg: valid(func(msg *CreateProposalMsg) {
				msg.RawActions = [][]byte{[]byte("first"), {}}
			}),
			WantErr: errors.ErrEmpty,
		},
		"Missing end date": {
			Msg:     valid(func(msg *CreateProposalMsg) { msg.EndDate = 0 }),
			WantErr: errors.ErrInput,
		},
		"Negative start date": {
			Msg:     valid(func(msg *CreateProposalMsg) { msg.StartDate = -1 }),
			WantErr: errors.ErrState,
		},
	}
	for msg, spec := range specs {
		t.Run(msg, func(t *testing.T) {
			if err := spec.Msg.Validate(); !spec.WantErr.Is(err) {
				t.Fatalf("expected %v but got %+v", spec.WantErr, err)
			}
		})
	}
}

func TestProposalIDRequired(t *testing.T) {
	// Every message addressing an existing proposal rejects an identifier
	// that is not a sha256 checksum.
	builders := map[string]func(id []byte) gavel.Msg{
		"approve": func(id []byte) gavel.Msg {
			return &ApproveMsg{Metadata: &gavel.Metadata{Schema: 1}, ProposalID: id}
		},
		"start delay": func(id []byte) gavel.Msg {
			return &StartDelayMsg{Metadata: &gavel.Metadata{Schema: 1}, ProposalID: id}
		},
		"confirm": func(id []byte) gavel.Msg {
			return &ConfirmMsg{Metadata: &gavel.Metadata{Schema: 1}, ProposalID: id}
		},
		"execute": func(id []byte) gavel.Msg {
			return &ExecuteMsg{Metadata: &gavel.Metadata{Schema: 1}, ProposalID: id}
		},
		"set secondary metadata": func(id []byte) gavel.Msg {
			return &SetSecondaryMetadataMsg{Metadata: &gavel.Metadata{Schema: 1}, ProposalID: id}
		},
	}
	goodID := bytes.Repeat([]byte{0xd1}, proposalIDLength)
	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			if err := build(goodID).Validate(); err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
			if err := build([]byte("short")).Validate(); !errors.ErrInput.Is(err) {
				t.Fatalf("expected an input error but got %+v", err)
			}
			if err := build(nil).Validate(); !errors.ErrInput.Is(err) {
				t.Fatalf("expected an input error but got %+v", err)
			}
		})
	}
}

func TestUpdateSettingsMsgValidate(t *testing.T) {
	valid := func(mod func(*Settings)) *UpdateSettingsMsg {
		msg := &UpdateSettingsMsg{
			Metadata: &gavel.Metadata{Schema: 1},
			Settings: Settings{
				Metadata:              &gavel.Metadata{Schema: 1},
				MinApprovals:          2,
				MinConfirmations:      2,
				EmergencyMinApprovals: 3,
				DelayDuration:         gavel.AsUnixDuration(time.Hour),
				MinExtraDuration:      gavel.AsUnixDuration(10 * time.Minute),
				Admin:                 admin,
			},
		}
		if mod != nil {
			mod(&msg.Settings)
		}
		return msg
	}
	specs := map[string]struct {
		Msg     gavel.Msg
		WantErr *errors.Error
	}{
		"All good": {
			Msg: valid(nil),
		},
		"Missing metadata": {
			Msg:     &UpdateSettingsMsg{Settings: valid(nil).Settings},
			WantErr: errors.ErrMetadata,
		},
		"Missing settings metadata": {
			Msg:     valid(func(s *Settings) { s.Metadata = nil }),
			WantErr: errors.ErrMetadata,
		},
		"Malformed admin address": {
			Msg:     valid(func(s *Settings) { s.Admin = []byte("too short") }),
			WantErr: errors.ErrInput,
		},
	}
	for msg, spec := range specs {
		t.Run(msg, func(t *testing.T) {
			if err := spec.Msg.Validate(); !spec.WantErr.Is(err) {
				t.Fatalf("expected %v but got %+v", spec.WantErr, err)
			}
		})
	}
}

func TestMembersMsgValidate(t *testing.T) {
	builders := map[string]func(addrs []gavel.Address) gavel.Msg{
		"add members": func(addrs []gavel.Address) gavel.Msg {
			return &AddMembersMsg{Metadata: &gavel.Metadata{Schema: 1}, Addresses: addrs}
		},
		"remove members": func(addrs []gavel.Address) gavel.Msg {
			return &RemoveMembersMsg{Metadata: &gavel.Metadata{Schema: 1}, Addresses: addrs}
		},
	}
	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			if err := build([]gavel.Address{alice, bobby}).Validate(); err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
			if err := build(nil).Validate(); !errors.ErrEmpty.Is(err) {
				t.Fatalf("expected an empty error but got %+v", err)
			}
			bad := []gavel.Address{alice, []byte("too short")}
			if err := build(bad).Validate(); !errors.ErrInput.Is(err) {
				t.Fatalf("expected an input error but got %+v", err)
			}
		})
	}
}
