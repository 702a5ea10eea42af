package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/gaveltest/assert"
	"github.com/iov-one/gavel/store"
)

func TestSaveLoad(t *testing.T) {
	db := store.MemStore()

	src := &MyConfig{Number: 421, Text: "foobar"}
	assert.Nil(t, Save(db, "mypkg", src))

	var got MyConfig
	assert.Nil(t, Load(db, "mypkg", &got))
	assert.Equal(t, src.Number, got.Number)
	assert.Equal(t, src.Text, got.Text)

	// Configurations of different packages are independent.
	if err := Load(db, "otherpkg", &got); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}
}

func TestSaveValidates(t *testing.T) {
	db := store.MemStore()

	src := &MyConfig{Number: 1, err: errors.ErrState}
	if err := Save(db, "mypkg", src); !errors.ErrState.Is(err) {
		t.Fatalf("want validation failure, got %+v", err)
	}

	// Nothing must be written for an invalid configuration.
	var got MyConfig
	if err := Load(db, "mypkg", &got); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}
}

func TestInitConfig(t *testing.T) {
	const genesis = `
	{
		"conf": {
			"mypkg": {
				"number": 333,
				"text": "init"
			}
		}
	}
	`
	var opts gavel.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	var conf MyConfig
	assert.Nil(t, InitConfig(db, opts, "mypkg", &conf))

	var got MyConfig
	assert.Nil(t, Load(db, "mypkg", &got))
	assert.Equal(t, int64(333), got.Number)
	assert.Equal(t, "init", got.Text)

	// A package without genesis configuration cannot be initialized.
	var other MyConfig
	if err := InitConfig(db, opts, "otherpkg", &other); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}
}

// MyConfig is a configuration fixture. It is serialized using JSON so that
// tests do not need a protobuf codec.
type MyConfig struct {
	Number int64  `json:"number"`
	Text   string `json:"text"`

	err error
}

func (c *MyConfig) Validate() error {
	return c.err
}

func (c *MyConfig) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

func (c *MyConfig) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, &c)
}
