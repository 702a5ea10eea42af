package board

import (
	"bytes"
	"testing"
	"time"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/gaveltest/assert"
)

func TestSettingsValidate(t *testing.T) {
	valid := func(mod func(*Settings)) Settings {
		s := Settings{
			Metadata:              &gavel.Metadata{Schema: 1},
			OnlyListed:            true,
			MinApprovals:          2,
			MinConfirmations:      2,
			EmergencyMinApprovals: 3,
			DelayDuration:         gavel.AsUnixDuration(time.Hour),
			MemberOnlyExecution:   true,
			MinExtraDuration:      gavel.AsUnixDuration(10 * time.Minute),
			Admin:                 admin,
		}
		if mod != nil {
			mod(&s)
		}
		return s
	}
	cases := map[string]struct {
		Settings   Settings
		WantErrors map[string]*errors.Error
	}{
		"All good": {
			Settings: valid(nil),
			WantErrors: map[string]*errors.Error{
				"Metadata":         nil,
				"Admin":            nil,
				"MinApprovals":     nil,
				"DelayDuration":    nil,
				"LastChangeHeight": nil,
			},
		},
		"Missing metadata": {
			Settings: valid(func(s *Settings) { s.Metadata = nil }),
			WantErrors: map[string]*errors.Error{
				"Metadata": errors.ErrMetadata,
			},
		},
		"Malformed admin address": {
			Settings: valid(func(s *Settings) { s.Admin = []byte("too short") }),
			WantErrors: map[string]*errors.Error{
				"Admin": errors.ErrInput,
			},
		},
		"Approval threshold above the counter range": {
			Settings: valid(func(s *Settings) { s.MinApprovals = maxMembers + 1 }),
			WantErrors: map[string]*errors.Error{
				"MinApprovals": errors.ErrInput,
			},
		},
		"Confirmation threshold above the counter range": {
			Settings: valid(func(s *Settings) { s.MinConfirmations = maxMembers + 1 }),
			WantErrors: map[string]*errors.Error{
				"MinConfirmations": errors.ErrInput,
			},
		},
		"Emergency threshold above the counter range": {
			Settings: valid(func(s *Settings) { s.EmergencyMinApprovals = maxMembers + 1 }),
			WantErrors: map[string]*errors.Error{
				"EmergencyMinApprovals": errors.ErrInput,
			},
		},
		"Negative delay duration": {
			Settings: valid(func(s *Settings) { s.DelayDuration = -1 }),
			WantErrors: map[string]*errors.Error{
				"DelayDuration": errors.ErrState,
			},
		},
		"Negative change height": {
			Settings: valid(func(s *Settings) { s.LastChangeHeight = -1 }),
			WantErrors: map[string]*errors.Error{
				"LastChangeHeight": errors.ErrInput,
			},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.Settings.Validate()
			for field, wantErr := range tc.WantErrors {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}

func TestValidateThresholds(t *testing.T) {
	th := func(approvals, confirmations, emergency uint32) Settings {
		return Settings{
			MinApprovals:          approvals,
			MinConfirmations:      confirmations,
			EmergencyMinApprovals: emergency,
		}
	}
	cases := map[string]struct {
		Settings    Settings
		MemberCount uint32
		Want        *errors.Error
	}{
		"All good": {
			Settings:    th(2, 2, 3),
			MemberCount: 3,
		},
		"Both bars on the member count": {
			Settings:    th(3, 1, 3),
			MemberCount: 3,
		},
		"Standard bar above the emergency bar": {
			Settings:    th(3, 1, 2),
			MemberCount: 5,
			Want:        ErrMinApprovals,
		},
		"Standard bar above the member count": {
			Settings:    th(4, 1, 4),
			MemberCount: 3,
			Want:        ErrMinApprovals,
		},
		"Emergency bar above the member count": {
			Settings:    th(2, 1, 4),
			MemberCount: 3,
			Want:        ErrMinApprovals,
		},
		"Zero approval threshold": {
			Settings:    th(0, 1, 1),
			MemberCount: 3,
			Want:        ErrMinApprovals,
		},
		"Zero confirmation threshold": {
			Settings:    th(2, 0, 3),
			MemberCount: 3,
			Want:        ErrMinApprovals,
		},
		"Zero emergency threshold": {
			Settings:    th(0, 1, 0),
			MemberCount: 3,
			Want:        ErrMinApprovals,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := validateThresholds(&tc.Settings, tc.MemberCount); !tc.Want.Is(err) {
				t.Fatalf("expected %v but got %v", tc.Want, err)
			}
		})
	}
}

func TestMemberValidate(t *testing.T) {
	valid := func(mod func(*Member)) Member {
		m := Member{
			Metadata:    &gavel.Metadata{Schema: 1},
			Address:     alice,
			Checkpoints: []MemberCheckpoint{{Height: 1, Member: true}},
		}
		if mod != nil {
			mod(&m)
		}
		return m
	}
	cases := map[string]struct {
		Member     Member
		WantErrors map[string]*errors.Error
	}{
		"All good": {
			Member: valid(nil),
			WantErrors: map[string]*errors.Error{
				"Metadata":    nil,
				"Address":     nil,
				"Checkpoints": nil,
			},
		},
		"Missing metadata": {
			Member: valid(func(m *Member) { m.Metadata = nil }),
			WantErrors: map[string]*errors.Error{
				"Metadata": errors.ErrMetadata,
			},
		},
		"Malformed address": {
			Member: valid(func(m *Member) { m.Address = []byte("too short") }),
			WantErrors: map[string]*errors.Error{
				"Address": errors.ErrInput,
			},
		},
		"No checkpoints": {
			Member: valid(func(m *Member) { m.Checkpoints = nil }),
			WantErrors: map[string]*errors.Error{
				"Checkpoints": errors.ErrEmpty,
			},
		},
		"Negative height": {
			Member: valid(func(m *Member) {
				m.Checkpoints = []MemberCheckpoint{{Height: -1, Member: true}}
			}),
			WantErrors: map[string]*errors.Error{
				"Checkpoints": errors.ErrInput,
			},
		},
		"Heights out of order": {
			Member: valid(func(m *Member) {
				m.Checkpoints = []MemberCheckpoint{
					{Height: 10, Member: true},
					{Height: 5, Member: false},
				}
			}),
			WantErrors: map[string]*errors.Error{
				"Checkpoints": errors.ErrState,
			},
		},
		"Repeated height": {
			Member: valid(func(m *Member) {
				m.Checkpoints = []MemberCheckpoint{
					{Height: 5, Member: true},
					{Height: 5, Member: false},
				}
			}),
			WantErrors: map[string]*errors.Error{
				"Checkpoints": nil,
			},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.Member.Validate()
			for field, wantErr := range tc.WantErrors {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}

func TestMemberAt(t *testing.T) {
	m := Member{
		Checkpoints: []MemberCheckpoint{
			{Height: 5, Member: true},
			{Height: 10, Member: false},
			{Height: 20, Member: true},
		},
	}
	cases := map[string]struct {
		Height int64
		Want   bool
	}{
		"Before any checkpoint":     {Height: 4, Want: false},
		"On the join height":        {Height: 5, Want: true},
		"Between join and leave":    {Height: 9, Want: true},
		"On the leave height":       {Height: 10, Want: false},
		"Between leave and rejoin":  {Height: 19, Want: false},
		"On the rejoin height":      {Height: 20, Want: true},
		"After the last checkpoint": {Height: 100, Want: true},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := m.MemberAt(tc.Height); tc.Want != got {
				t.Fatalf("expected %v but got %v", tc.Want, got)
			}
		})
	}

	var empty Member
	if empty.MemberAt(100) {
		t.Error("expected no membership without checkpoints")
	}
}

func TestMemberNow(t *testing.T) {
	cases := map[string]struct {
		Checkpoints []MemberCheckpoint
		Want        bool
	}{
		"No checkpoints": {
			Want: false,
		},
		"Last checkpoint joins": {
			Checkpoints: []MemberCheckpoint{
				{Height: 5, Member: false},
				{Height: 10, Member: true},
			},
			Want: true,
		},
		"Last checkpoint leaves": {
			Checkpoints: []MemberCheckpoint{
				{Height: 5, Member: true},
				{Height: 10, Member: false},
			},
			Want: false,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			m := Member{Checkpoints: tc.Checkpoints}
			if got := m.MemberNow(); tc.Want != got {
				t.Fatalf("expected %v but got %v", tc.Want, got)
			}
		})
	}
}

func TestProposalParametersValidate(t *testing.T) {
	valid := func(mod func(*ProposalParameters)) ProposalParameters {
		p := ProposalParameters{
			MinApprovals:          2,
			MinConfirmations:      2,
			EmergencyMinApprovals: 3,
			SnapshotHeight:        99,
			StartDate:             100,
			EndDate:               200,
			DelayDuration:         gavel.AsUnixDuration(time.Hour),
			MinExtraDuration:      gavel.AsUnixDuration(10 * time.Minute),
		}
		if mod != nil {
			mod(&p)
		}
		return p
	}
	cases := map[string]struct {
		Params     ProposalParameters
		WantErrors map[string]*errors.Error
	}{
		"All good": {
			Params: valid(nil),
			WantErrors: map[string]*errors.Error{
				"MinApprovals":          nil,
				"MinConfirmations":      nil,
				"EmergencyMinApprovals": nil,
				"SnapshotHeight":        nil,
				"StartDate":             nil,
				"EndDate":               nil,
			},
		},
		"Zero approval threshold": {
			Params: valid(func(p *ProposalParameters) { p.MinApprovals = 0 }),
			WantErrors: map[string]*errors.Error{
				"MinApprovals": errors.ErrInput,
			},
		},
		"Zero confirmation threshold": {
			Params: valid(func(p *ProposalParameters) { p.MinConfirmations = 0 }),
			WantErrors: map[string]*errors.Error{
				"MinConfirmations": errors.ErrInput,
			},
		},
		"Emergency bar below the standard bar": {
			Params: valid(func(p *ProposalParameters) { p.EmergencyMinApprovals = 1 }),
			WantErrors: map[string]*errors.Error{
				"EmergencyMinApprovals": errors.ErrInput,
			},
		},
		"Negative snapshot height": {
			Params: valid(func(p *ProposalParameters) { p.SnapshotHeight = -1 }),
			WantErrors: map[string]*errors.Error{
				"SnapshotHeight": errors.ErrInput,
			},
		},
		"End before start": {
			Params: valid(func(p *ProposalParameters) { p.EndDate = 99 }),
			WantErrors: map[string]*errors.Error{
				"EndDate": errors.ErrInput,
			},
		},
		"Negative delay duration": {
			Params: valid(func(p *ProposalParameters) { p.DelayDuration = -1 }),
			WantErrors: map[string]*errors.Error{
				"DelayDuration": errors.ErrState,
			},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.Params.Validate()
			for field, wantErr := range tc.WantErrors {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}

func TestProposalValidate(t *testing.T) {
	valid := func(mod func(*Proposal)) Proposal {
		p := Proposal{
			Metadata: &gavel.Metadata{Schema: 1},
			Parameters: ProposalParameters{
				MinApprovals:          2,
				MinConfirmations:      2,
				EmergencyMinApprovals: 3,
				SnapshotHeight:        99,
				StartDate:             100,
				EndDate:               200,
				DelayDuration:         gavel.AsUnixDuration(time.Hour),
				MinExtraDuration:      gavel.AsUnixDuration(10 * time.Minute),
			},
			Creator:     alice,
			RawMetadata: []byte("payload"),
			RawActions:  [][]byte{[]byte("first")},
		}
		if mod != nil {
			mod(&p)
		}
		return p
	}
	manyActions := make([][]byte, maxActions+1)
	for i := range manyActions {
		manyActions[i] = []byte{byte(i)}
	}
	cases := map[string]struct {
		Proposal   Proposal
		WantErrors map[string]*errors.Error
	}{
		"All good": {
			Proposal: valid(nil),
			WantErrors: map[string]*errors.Error{
				"Metadata":   nil,
				"Parameters": nil,
				"Creator":    nil,
				"RawActions": nil,
				"Approvals":  nil,
			},
		},
		"Missing metadata": {
			Proposal: valid(func(p *Proposal) { p.Metadata = nil }),
			WantErrors: map[string]*errors.Error{
				"Metadata": errors.ErrMetadata,
			},
		},
		"Missing creator": {
			Proposal: valid(func(p *Proposal) { p.Creator = nil }),
			WantErrors: map[string]*errors.Error{
				"Creator": errors.ErrInput,
			},
		},
		"Too many actions": {
			Proposal: valid(func(p *Proposal) { p.RawActions = manyActions }),
			WantErrors: map[string]*errors.Error{
				"RawActions": errors.ErrInput,
			},
		},
		"Empty action": {
			Proposal: valid(func(p *Proposal) {
				p.RawActions = [][]byte{[]byte("first"), {}}
			}),
			WantErrors: map[string]*errors.Error{
				"RawActions": errors.ErrEmpty,
			},
		},
		"Approval counter out of range": {
			Proposal: valid(func(p *Proposal) { p.Approvals = maxMembers + 1 }),
			WantErrors: map[string]*errors.Error{
				"Approvals": errors.ErrInput,
			},
		},
		"Confirmation counter out of range": {
			Proposal: valid(func(p *Proposal) { p.Confirmations = maxMembers + 1 }),
			WantErrors: map[string]*errors.Error{
				"Confirmations": errors.ErrInput,
			},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.Proposal.Validate()
			for field, wantErr := range tc.WantErrors {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}

func TestProposalOpen(t *testing.T) {
	p := Proposal{
		Parameters: ProposalParameters{
			StartDate: 100,
			EndDate:   200,
		},
	}
	cases := map[string]struct {
		Now      gavel.UnixTime
		Executed bool
		Want     bool
	}{
		"Before the start":      {Now: 99, Want: false},
		"On the start date":     {Now: 100, Want: true},
		"Inside the window":     {Now: 150, Want: true},
		"On the end date":       {Now: 200, Want: true},
		"After the end":         {Now: 201, Want: false},
		"Executed stays closed": {Now: 150, Executed: true, Want: false},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			p := p
			p.Executed = tc.Executed
			if got := p.Open(tc.Now); tc.Want != got {
				t.Fatalf("expected %v but got %v", tc.Want, got)
			}
		})
	}
}

func TestProposalDelayElapsed(t *testing.T) {
	cases := map[string]struct {
		DelayStart gavel.UnixTime
		Now        gavel.UnixTime
		Want       bool
	}{
		"Never started": {
			DelayStart: 0,
			Now:        1000,
			Want:       false,
		},
		"One second early": {
			DelayStart: 100,
			Now:        149,
			Want:       false,
		},
		"On the boundary": {
			DelayStart: 100,
			Now:        150,
			Want:       true,
		},
		"Long elapsed": {
			DelayStart: 100,
			Now:        1000,
			Want:       true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			p := Proposal{
				Parameters: ProposalParameters{
					DelayDuration: gavel.UnixDuration(50),
				},
				DelayStart: tc.DelayStart,
			}
			if got := p.DelayElapsed(tc.Now); tc.Want != got {
				t.Fatalf("expected %v but got %v", tc.Want, got)
			}
		})
	}
}

func TestProposalID(t *testing.T) {
	base, err := proposalID(alice, []byte("payload"), [][]byte{[]byte("one")}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if exp, got := proposalIDLength, len(base); exp != got {
		t.Fatalf("expected %d bytes but got %d", exp, got)
	}
	again, err := proposalID(alice, []byte("payload"), [][]byte{[]byte("one")}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if !bytes.Equal(base, again) {
		t.Fatal("the same fingerprint must derive the same identifier")
	}

	cases := map[string]struct {
		Creator     gavel.Address
		RawMetadata []byte
		RawActions  [][]byte
		Height      int64
	}{
		"Creator":  {bobby, []byte("payload"), [][]byte{[]byte("one")}, 5},
		"Metadata": {alice, []byte("other"), [][]byte{[]byte("one")}, 5},
		"Actions":  {alice, []byte("payload"), [][]byte{[]byte("two")}, 5},
		"Height":   {alice, []byte("payload"), [][]byte{[]byte("one")}, 6},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			id, err := proposalID(tc.Creator, tc.RawMetadata, tc.RawActions, tc.Height)
			if err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
			if bytes.Equal(base, id) {
				t.Fatal("expected a distinct identifier")
			}
		})
	}
}
