// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import "github.com/ava-labs/countervm/codec"

type Status uint8

const (
	StatusUninitialized Status = iota
	StatusActive
	StatusDeleted
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusActive:
		return "active"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// GlobalState is everything the counter program persists for one
// application. Owner and Counter are only meaningful while the application
// is active.
type GlobalState struct {
	Status  Status        `json:"status"`
	Owner   codec.Address `json:"owner"`
	Counter uint64        `json:"counter"`
}

func (g *GlobalState) Active() bool {
	return g.Status == StatusActive
}

// IsOwner reports whether [caller] is the identity recorded at creation.
func (g *GlobalState) IsOwner(caller codec.Address) bool {
	return g.Active() && g.Owner == caller
}
