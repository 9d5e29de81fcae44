// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

// Global keys maintained by the counter program. Names are case sensitive
// and match the layout declared at creation.
const (
	OwnerKey   = "owner"
	CounterKey = "Counter"
)

// Storage allotted to every application at creation.
const (
	GlobalInts  uint64 = 1
	GlobalBytes uint64 = 1
	LocalInts   uint64 = 1
	LocalBytes  uint64 = 1
)

// Invocation selectors accepted by a normal call.
const (
	OpAdd   = "add"
	OpMinus = "minus"
	OpSet   = "set"
)
