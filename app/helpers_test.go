package app

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/gaveltest/assert"
	"github.com/iov-one/gavel/store/iavl"
	abci "github.com/tendermint/tendermint/abci/types"
)

// rawQueryHandler answers queries with the raw database content, without any
// bucket framing. ABCIStore sends its requests to the "/" path in exactly
// this form.
type rawQueryHandler struct{}

var _ gavel.QueryHandler = rawQueryHandler{}

func (rawQueryHandler) Query(db gavel.ReadOnlyKVStore, mod string, data []byte) ([]gavel.Model, error) {
	switch mod {
	case gavel.KeyQueryMod:
		value, err := db.Get(data)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
		return []gavel.Model{{Key: data, Value: value}}, nil
	case gavel.PrefixQueryMod:
		if len(data) != 0 {
			return nil, errors.Wrap(errors.ErrInput, "only a full listing is supported")
		}
		it, err := db.Iterator(nil, nil)
		if err != nil {
			return nil, err
		}
		defer it.Close()
		var models []gavel.Model
		for it.Valid() {
			models = append(models, gavel.Pair(it.Key(), it.Value()))
			if err := it.Next(); err != nil {
				return nil, err
			}
		}
		return models, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

func testABCIStore(t *testing.T) *ABCIStore {
	t.Helper()

	qr := gavel.NewQueryRouter()
	qr.Register("/", rawQueryHandler{})

	s := NewStoreApp("helpers", iavl.MockCommitStore(), qr, context.Background()).
		WithInit(ChainInitializers(dummyInit{}))
	s.InitChain(abci.RequestInitChain{
		AppStateBytes: []byte(`{"dummy": "secret"}`),
		ChainId:       "test-chain-33",
	})
	b := NewBaseApp(s, pathTxDecoder, NewRouter(), false)
	b.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{
		Height: 1,
		Time:   time.Now(),
	}})
	// queries are answered from the committed state only
	b.Commit()
	return NewABCIStore(b)
}

func TestABCIStoreGet(t *testing.T) {
	s := testABCIStore(t)

	value, err := s.Get([]byte(dummyKey))
	assert.Nil(t, err)
	assert.Equal(t, []byte("secret"), value)

	value, err = s.Get([]byte("no-such-key"))
	assert.Nil(t, err)
	assert.Nil(t, value)

	ok, err := s.Has([]byte(dummyKey))
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	ok, err = s.Has([]byte("no-such-key"))
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}

func TestABCIStoreIterator(t *testing.T) {
	s := testABCIStore(t)

	// the full listing contains the genesis value and the chain id
	it, err := s.Iterator(nil, nil)
	assert.Nil(t, err)
	defer it.Close()

	var keys []string
	for it.Valid() {
		keys = append(keys, string(it.Key()))
		assert.Nil(t, it.Next())
	}
	assert.Equal(t, []string{chainIDKey, dummyKey}, keys)

	// ranged iteration is not supported over abci queries
	if _, err := s.Iterator([]byte{0}, nil); err == nil {
		t.Fatal("ranged iteration must be rejected")
	}
	if _, err := s.ReverseIterator(nil, nil); err == nil {
		t.Fatal("reverse iteration must be rejected")
	}
}
