package board

import (
	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/migration"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ gavel.Initializer = (*Initializer)(nil)

// FromGenesis will parse the initial board configuration and member list from
// genesis and save them in the database.
func (*Initializer) FromGenesis(opts gavel.Options, params gavel.GenesisParams, kv gavel.KVStore) error {
	var board struct {
		Settings struct {
			OnlyListed            bool               `json:"only_listed"`
			MinApprovals          uint32             `json:"min_approvals"`
			MinConfirmations      uint32             `json:"min_confirmations"`
			EmergencyMinApprovals uint32             `json:"emergency_min_approvals"`
			DelayDuration         gavel.UnixDuration `json:"delay_duration"`
			MemberOnlyExecution   bool               `json:"member_only_execution"`
			MinExtraDuration      gavel.UnixDuration `json:"min_extra_duration"`
			Admin                 gavel.Address      `json:"admin"`
		} `json:"settings"`
		Members []gavel.Address `json:"members"`
	}
	if err := opts.ReadOptions("board", &board); err != nil {
		return errors.Wrap(err, "cannot load board genesis")
	}
	if len(board.Settings.Admin) == 0 {
		// No board declared in this genesis.
		return nil
	}

	migration.MustInitPkg(kv, packageName)

	if len(board.Members) > maxMembers {
		return errors.Wrapf(ErrAddressListSize, "more than %d members", maxMembers)
	}
	settings := Settings{
		Metadata:              &gavel.Metadata{Schema: 1},
		OnlyListed:            board.Settings.OnlyListed,
		MinApprovals:          board.Settings.MinApprovals,
		MinConfirmations:      board.Settings.MinConfirmations,
		EmergencyMinApprovals: board.Settings.EmergencyMinApprovals,
		DelayDuration:         board.Settings.DelayDuration,
		MemberOnlyExecution:   board.Settings.MemberOnlyExecution,
		MinExtraDuration:      board.Settings.MinExtraDuration,
		Admin:                 board.Settings.Admin,
	}
	if err := validateThresholds(&settings, uint32(len(board.Members))); err != nil {
		return errors.Wrap(err, "invalid initial settings")
	}

	members := NewMemberBucket()
	for i, addr := range board.Members {
		m, err := members.GetMember(kv, addr)
		if err != nil {
			return err
		}
		if m != nil {
			return errors.Wrapf(errors.ErrDuplicate, "member #%d", i)
		}
		m = &Member{
			Metadata:    &gavel.Metadata{Schema: 1},
			Address:     addr,
			Checkpoints: []MemberCheckpoint{{Height: 0, Member: true}},
		}
		if err := members.Update(kv, m); err != nil {
			return errors.Wrapf(err, "cannot save member #%d", i)
		}
	}
	roster := &Roster{
		Metadata:    &gavel.Metadata{Schema: 1},
		MemberCount: uint32(len(board.Members)),
	}
	if err := NewRosterBucket().Update(kv, roster); err != nil {
		return errors.Wrap(err, "cannot save roster")
	}
	if err := saveSettings(kv, &settings); err != nil {
		return errors.Wrap(err, "cannot save settings")
	}
	return nil
}
