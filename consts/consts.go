// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	IDLen          = 32
	MaxUint8       = ^uint8(0)
	MaxUint16      = ^uint16(0)
	MaxUint        = ^uint(0)
	MaxInt         = int(MaxUint >> 1)
	ByteLen        = 1
	BoolLen        = 1
	Uint16Len      = 2
	IntLen         = 4
	Uint64Len      = 8
	MaxUint64      = ^uint64(0)
	MaxUint64Bytes = Uint64Len

	MillisecondsPerSecond = 1000
)

const (
	Name    = "countervm"
	Version = "v0.0.1"

	// HRP is the bech32 human readable part used when displaying addresses.
	HRP = "counter"
)
