package utils_test

import (
	"context"
	"testing"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/app"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/gaveltest"
	"github.com/iov-one/gavel/gaveltest/assert"
	"github.com/iov-one/gavel/store"
	"github.com/iov-one/gavel/x/utils"
	"github.com/tendermint/tendermint/libs/common"
)

func stringTag(key, value string) common.KVPair {
	return common.KVPair{
		Key:   []byte(key),
		Value: []byte(value),
	}
}

func TestActionTagger(t *testing.T) {
	cases := map[string]struct {
		stack gavel.Handler
		tx    gavel.Tx
		err   *errors.Error
		tags  []common.KVPair
	}{
		"simple call": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&gaveltest.Handler{},
			),
			tx:   &gaveltest.Tx{Msg: &gaveltest.Msg{RoutePath: "foobar/create"}},
			tags: []common.KVPair{stringTag(utils.ActionKey, "foobar/create")},
		},
		"passes through error": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&gaveltest.Handler{DeliverErr: errors.ErrHuman},
			),
			tx:  &gaveltest.Tx{Msg: &gaveltest.Msg{RoutePath: "foobar/create"}},
			err: errors.ErrHuman,
		},
		"tags are additive": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&gaveltest.Handler{
					DeliverResult: gavel.DeliverResult{Tags: []common.KVPair{stringTag(utils.ActionKey, "random")}},
				},
			),
			tx:   &gaveltest.Tx{Msg: &gaveltest.Msg{RoutePath: "foobar/create"}},
			tags: []common.KVPair{stringTag(utils.ActionKey, "random"), stringTag(utils.ActionKey, "foobar/create")},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			db := store.MemStore()

			// we get tagged on success
			res, err := tc.stack.Deliver(ctx, db, tc.tx)
			if tc.err != nil {
				if !tc.err.Is(err) {
					t.Fatalf("unexpected error type returned: %v", err)
				}
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, len(tc.tags), len(res.Tags))
			for i := range tc.tags {
				assert.Equal(t, string(tc.tags[i].Key), string(res.Tags[i].Key))
				assert.Equal(t, string(tc.tags[i].Value), string(res.Tags[i].Value))
			}
		})
	}
}
