package board

import (
	"bytes"
	"testing"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/migration"
	"github.com/iov-one/gavel/store"
)

func TestProposalIndexAppend(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, packageName)
	b := NewProposalIndexBucket()

	ids := [][]byte{
		bytes.Repeat([]byte{0xa1}, proposalIDLength),
		bytes.Repeat([]byte{0xa2}, proposalIDLength),
		bytes.Repeat([]byte{0xa3}, proposalIDLength),
	}
	for i, id := range ids {
		pos, err := b.Append(db, id)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if exp, got := uint64(i), pos; exp != got {
			t.Fatalf("expected position %d but got %d", exp, got)
		}
	}
	for i, want := range ids {
		id, err := b.ProposalIDByIndex(db, uint64(i))
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if !bytes.Equal(want, id) {
			t.Errorf("index %d: expected %X but got %X", i, want, id)
		}
	}
	if _, err := b.ProposalIDByIndex(db, uint64(len(ids))); !errors.ErrNotFound.Is(err) {
		t.Fatalf("expected not found, got %+v", err)
	}
}

func TestEndorsementBucketsAreIsolated(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, packageName)
	approvals := NewApprovalBucket()
	confirms := NewConfirmBucket()

	if err := approvals.Endorse(db, fixtureProposalID, alice, 42); err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}

	specs := map[string]struct {
		Bucket *EndorsementBucket
		Signer gavel.Address
		Want   bool
	}{
		"Approval recorded":             {Bucket: approvals, Signer: alice, Want: true},
		"No confirmation for approval":  {Bucket: confirms, Signer: alice, Want: false},
		"Other signers are not covered": {Bucket: approvals, Signer: bobby, Want: false},
	}
	for msg, spec := range specs {
		t.Run(msg, func(t *testing.T) {
			got, err := spec.Bucket.Endorsed(db, fixtureProposalID, spec.Signer)
			if err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
			if spec.Want != got {
				t.Errorf("expected %v but got %v", spec.Want, got)
			}
		})
	}
}

func TestRosterDefault(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, packageName)

	r, err := NewRosterBucket().GetRoster(db)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if exp, got := uint32(0), r.MemberCount; exp != got {
		t.Errorf("expected %d members but got %d", exp, got)
	}
	if r.Metadata == nil {
		t.Error("expected an initialized metadata")
	}
}

func TestQueryBoard(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, packageName)

	settings := &Settings{
		Metadata:              &gavel.Metadata{Schema: 1},
		MinApprovals:          2,
		MinConfirmations:      2,
		EmergencyMinApprovals: 3,
		Admin:                 admin,
	}
	if err := saveSettings(db, settings); err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	pBucket := NewProposalBucket()
	proposal := &Proposal{
		Metadata: &gavel.Metadata{Schema: 1},
		Parameters: ProposalParameters{
			MinApprovals:          2,
			MinConfirmations:      2,
			EmergencyMinApprovals: 3,
			StartDate:             100,
			EndDate:               200,
		},
		Creator:     alice,
		RawMetadata: []byte("payload"),
		RawActions:  [][]byte{[]byte("first")},
	}
	if err := pBucket.Update(db, fixtureProposalID, proposal); err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	aBucket := NewApprovalBucket()
	for _, signer := range []gavel.Address{alice, bobby} {
		if err := aBucket.Endorse(db, fixtureProposalID, signer, 42); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
	}

	qr := gavel.NewQueryRouter()
	RegisterQuery(qr)

	t.Run("Proposal by id", func(t *testing.T) {
		h := qr.Handler("/proposals")
		if h == nil {
			t.Fatal("must not be nil")
		}
		models, err := h.Query(db, gavel.KeyQueryMod, fixtureProposalID)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if exp, got := 1, len(models); exp != got {
			t.Fatalf("expected %d models but got %d", exp, got)
		}
		obj, err := pBucket.Parse(nil, models[0].Value)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		p, ok := obj.Value().(*Proposal)
		if !ok {
			t.Fatalf("unknown type: %T", obj.Value())
		}
		if exp, got := "payload", string(p.RawMetadata); exp != got {
			t.Errorf("expected %q but got %q", exp, got)
		}
	})

	t.Run("Approvals by proposal prefix", func(t *testing.T) {
		h := qr.Handler("/approvals")
		if h == nil {
			t.Fatal("must not be nil")
		}
		models, err := h.Query(db, gavel.PrefixQueryMod, fixtureProposalID)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if exp, got := 2, len(models); exp != got {
			t.Fatalf("expected %d models but got %d", exp, got)
		}
	})

	t.Run("Settings singleton", func(t *testing.T) {
		h := qr.Handler("/boardsettings")
		if h == nil {
			t.Fatal("must not be nil")
		}
		models, err := h.Query(db, gavel.KeyQueryMod, nil)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if exp, got := 1, len(models); exp != got {
			t.Fatalf("expected %d models but got %d", exp, got)
		}
		var got Settings
		if err := got.Unmarshal(models[0].Value); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if !admin.Equals(got.Admin) {
			t.Errorf("expected admin %q but got %q", admin, got.Admin)
		}
	})

	t.Run("Unknown proposal id", func(t *testing.T) {
		h := qr.Handler("/proposals")
		models, err := h.Query(db, gavel.KeyQueryMod, bytes.Repeat([]byte{0xee}, proposalIDLength))
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if exp, got := 0, len(models); exp != got {
			t.Fatalf("expected %d models but got %d", exp, got)
		}
	})
}
