package board

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/gaveltest"
	"github.com/iov-one/gavel/migration"
)

var (
	aliceCond   = gaveltest.NewCondition()
	alice       = aliceCond.Address()
	bobbyCond   = gaveltest.NewCondition()
	bobby       = bobbyCond.Address()
	charlieCond = gaveltest.NewCondition()
	charlie     = charlieCond.Address()
	adminCond   = gaveltest.NewCondition()
	admin       = adminCond.Address()
	daveCond    = gaveltest.NewCondition()
	dave        = daveCond.Address()
)

// fixtureHeight is the block height the handler tests run at. The board
// members join at height 1 so they are eligible at the snapshot one below.
const fixtureHeight int64 = 100

// fixtureProposalID is a well formed identifier under which test proposals
// are stored directly, without deriving the creation checksum.
var fixtureProposalID = bytes.Repeat([]byte{0xd1}, proposalIDLength)

// ctxAwareMutator is a callback interface to modify the passed proposal for
// test setup.
type ctxAwareMutator func(gavel.Context, *Proposal)

// withBoard initializes the package schema and stores a three member board
// with alice, bobby and charlie. The returned settings are already saved.
func withBoard(t testing.TB, db gavel.KVStore) *Settings {
	t.Helper()
	migration.MustInitPkg(db, packageName)
	settings := &Settings{
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
	if err := saveSettings(db, settings); err != nil {
		t.Fatalf("cannot save settings: %+v", err)
	}
	members := NewMemberBucket()
	for _, addr := range []gavel.Address{alice, bobby, charlie} {
		m := &Member{
			Metadata:    &gavel.Metadata{Schema: 1},
			Address:     addr,
			Checkpoints: []MemberCheckpoint{{Height: 1, Member: true}},
		}
		if err := members.Update(db, m); err != nil {
			t.Fatalf("cannot save member: %+v", err)
		}
	}
	roster := &Roster{Metadata: &gavel.Metadata{Schema: 1}, MemberCount: 3}
	if err := NewRosterBucket().Update(db, roster); err != nil {
		t.Fatalf("cannot save roster: %+v", err)
	}
	return settings
}

// modSettings applies the given change to the stored board configuration.
func modSettings(t testing.TB, db gavel.KVStore, mod func(*Settings)) {
	t.Helper()
	s, err := loadSettings(db)
	if err != nil {
		t.Fatalf("cannot load settings: %+v", err)
	}
	mod(s)
	if err := saveSettings(db, s); err != nil {
		t.Fatalf("cannot save settings: %+v", err)
	}
}

func proposalFixture(t testing.TB, ctx gavel.Context, mods ...ctxAwareMutator) Proposal {
	t.Helper()
	now, err := blockNow(ctx)
	if err != nil {
		t.Fatalf("block time: %+v", err)
	}
	height, _ := gavel.GetHeight(ctx)
	proposal := Proposal{
		Metadata: &gavel.Metadata{Schema: 1},
		Parameters: ProposalParameters{
			MinApprovals:          2,
			MinConfirmations:      2,
			EmergencyMinApprovals: 3,
			SnapshotHeight:        height - 1,
			StartDate:             now.Add(-time.Minute),
			EndDate:               now.Add(time.Hour),
			DelayDuration:         gavel.AsUnixDuration(time.Hour),
			MinExtraDuration:      gavel.AsUnixDuration(10 * time.Minute),
			MemberOnlyExecution:   true,
		},
		Creator:     alice,
		RawMetadata: []byte("migrate the treasury"),
		RawActions:  [][]byte{[]byte("write one"), []byte("write two")},
	}
	for _, mod := range mods {
		if mod != nil {
			mod(ctx, &proposal)
		}
	}
	return proposal
}

// withProposal stores a proposal fixture under fixtureProposalID on top of a
// fresh three member board.
func withProposal(t testing.TB, db gavel.KVStore, ctx gavel.Context, mods ...ctxAwareMutator) *ProposalBucket {
	t.Helper()
	withBoard(t, db)
	proposal := proposalFixture(t, ctx, mods...)
	pBucket := NewProposalBucket()
	if err := pBucket.Update(db, fixtureProposalID, &proposal); err != nil {
		t.Fatalf("cannot store proposal: %+v", err)
	}
	return pBucket
}

// endorse stores raw endorsement records without touching the proposal
// counters.
func endorse(t testing.TB, db gavel.KVStore, b *EndorsementBucket, proposalID []byte, signers ...gavel.Address) {
	t.Helper()
	now := gavel.AsUnixTime(time.Now())
	for _, s := range signers {
		if err := b.Endorse(db, proposalID, s, now); err != nil {
			t.Fatalf("cannot endorse: %+v", err)
		}
	}
}

// saveMember stores a member history with the given checkpoints.
func saveMember(t testing.TB, db gavel.KVStore, addr gavel.Address, cps ...MemberCheckpoint) {
	t.Helper()
	m := &Member{
		Metadata:    &gavel.Metadata{Schema: 1},
		Address:     addr,
		Checkpoints: cps,
	}
	if err := NewMemberBucket().Update(db, m); err != nil {
		t.Fatalf("cannot save member: %+v", err)
	}
}

// setRoster overwrites the stored member count.
func setRoster(t testing.TB, db gavel.KVStore, n uint32) {
	t.Helper()
	roster := &Roster{Metadata: &gavel.Metadata{Schema: 1}, MemberCount: n}
	if err := NewRosterBucket().Update(db, roster); err != nil {
		t.Fatalf("cannot save roster: %+v", err)
	}
}

// testDecoder interprets a raw proposal action as a payload for
// testExecutor. The payload "garbled" does not decode.
func testDecoder(raw []byte) (gavel.Msg, error) {
	if string(raw) == "garbled" {
		return nil, errors.Wrap(errors.ErrInput, "cannot decode action")
	}
	return &gaveltest.Msg{RoutePath: "test/action", Serialized: raw}, nil
}

// testExecutor applies decoded proposal actions. A payload of the form
// "write <name>" stores <name> under "action:<name>", the payload "fail"
// returns an error and "whoami" demands the board execution authority.
func testExecutor() Executor {
	return func(ctx gavel.Context, db gavel.KVStore, msg gavel.Msg) (*gavel.DeliverResult, error) {
		payload := string(msg.(*gaveltest.Msg).Serialized)
		switch {
		case payload == "fail":
			return nil, errors.Wrap(errors.ErrState, "action failure requested")
		case payload == "whoami":
			if !(Authenticate{}).HasAddress(ctx, ExecCondition().Address()) {
				return nil, errors.Wrap(errors.ErrUnauthorized, "not running as the board")
			}
			return &gavel.DeliverResult{Data: ExecCondition().Address()}, nil
		case strings.HasPrefix(payload, "write "):
			name := strings.TrimPrefix(payload, "write ")
			if err := db.Set([]byte("action:"+name), []byte(name)); err != nil {
				return nil, err
			}
			return &gavel.DeliverResult{Data: []byte(name), Log: payload}, nil
		default:
			return nil, errors.Wrapf(errors.ErrMsg, "unknown action %q", payload)
		}
	}
}
