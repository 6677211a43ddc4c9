// Package uid generates the identifiers used for every stored record.
package uid

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ID is a snowflake ID. It is stored as an integer and presented to users as
// a base58 string.
type ID snowflake.ID

var node *snowflake.Node

func init() {
	snowflake.Epoch = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	var err error
	//nolint:gosec // do not need cryptographic random value here
	node, err = snowflake.NewNode(rand.Int63n(1024))
	if err != nil {
		panic(err)
	}
}

// New returns an ID using a random NodeID. The NodeID is selected when the
// process starts, and won't change until the process is restarted.
func New() ID {
	return ID(node.Generate())
}

func (u ID) String() string {
	if u <= 0 {
		return ""
	}
	return snowflake.ID(u).Base58()
}

// Parse a base58 encoded ID.
func Parse(s string) (ID, error) {
	switch {
	case s == "":
		return 0, fmt.Errorf("invalid id: empty")
	case len(s) > 11:
		return 0, fmt.Errorf("invalid id: too long")
	case strings.HasPrefix(s, "1"):
		return 0, fmt.Errorf("invalid id: not in canonical form")
	}

	id, err := snowflake.ParseBase58([]byte(s))
	if err != nil {
		return 0, fmt.Errorf("invalid id: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid id: value out of range")
	}
	return ID(id), nil
}

func (u ID) MarshalText() ([]byte, error) {
	if u < 0 {
		return nil, fmt.Errorf("invalid id: negative value")
	}
	return []byte(u.String()), nil
}

func (u *ID) UnmarshalText(b []byte) error {
	id, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = id
	return nil
}
