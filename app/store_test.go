package app

import (
	"context"
	"testing"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/gaveltest/assert"
	"github.com/iov-one/gavel/store/iavl"
	abci "github.com/tendermint/tendermint/abci/types"
)

func TestAddValChange(t *testing.T) {
	pubKey := abci.PubKey{Type: "ed25519", Data: []byte("someKey")}
	pubKey2 := abci.PubKey{Type: "ed25519", Data: []byte("someKey2")}

	s := NewStoreApp("dummy", iavl.MockCommitStore(), gavel.NewQueryRouter(), context.Background())

	t.Run("diff is equal to output with one update", func(t *testing.T) {
		diff := []abci.ValidatorUpdate{
			{PubKey: pubKey, Power: 10},
		}
		s.AddValChange(diff)
		res := s.EndBlock(abci.RequestEndBlock{})
		assert.Equal(t, diff, res.ValidatorUpdates)
	})

	t.Run("only produce the last update per validator", func(t *testing.T) {
		diff := []abci.ValidatorUpdate{
			{PubKey: pubKey, Power: 10},
			{PubKey: pubKey2, Power: 15},
			{PubKey: pubKey, Power: 1},
			{PubKey: pubKey2, Power: 2},
		}
		s.AddValChange(diff)
		res := s.EndBlock(abci.RequestEndBlock{})
		assert.Equal(t, diff[2:], res.ValidatorUpdates)
	})

	t.Run("a call with an empty diff does nothing", func(t *testing.T) {
		diff := []abci.ValidatorUpdate{
			{PubKey: pubKey, Power: 10},
			{PubKey: pubKey2, Power: 15},
		}
		s.AddValChange(diff)
		s.AddValChange(make([]abci.ValidatorUpdate, 0))

		res := s.EndBlock(abci.RequestEndBlock{})
		assert.Equal(t, diff, res.ValidatorUpdates)
	})

	t.Run("pending updates are flushed by the end of the block", func(t *testing.T) {
		res := s.EndBlock(abci.RequestEndBlock{})
		assert.Equal(t, 0, len(res.ValidatorUpdates))
	})
}

func TestSplitPath(t *testing.T) {
	cases := map[string]struct {
		path     string
		wantPath string
		wantMod  string
	}{
		"plain path":        {"/proposals", "/proposals", ""},
		"prefix query":      {"/proposals?prefix", "/proposals", "prefix"},
		"empty modifier":    {"/proposals?", "/proposals", ""},
		"nested path":       {"/proposals/index", "/proposals/index", ""},
		"modifier preserved": {"/members?index", "/members", "index"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path, mod := splitPath(tc.path)
			assert.Equal(t, tc.wantPath, path)
			assert.Equal(t, tc.wantMod, mod)
		})
	}
}
