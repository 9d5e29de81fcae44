// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/countervm/consts"
)

// DecodeUint interprets [b] as a big-endian unsigned integer. Up to eight
// bytes are accepted and an empty slice decodes to 0.
func DecodeUint(b []byte) (uint64, error) {
	if len(b) > consts.Uint64Len {
		return 0, fmt.Errorf("%w: integer is %d bytes (max %d)", ErrMalformedArgument, len(b), consts.Uint64Len)
	}
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v, nil
}

// EncodeUint returns the 8 byte big-endian encoding of [v].
func EncodeUint(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

// Args builds the argument list for a normal call.
func Args(op string, extra ...[]byte) [][]byte {
	return append([][]byte{[]byte(op)}, extra...)
}

// SetArgs builds the argument list for setting the counter to [v].
func SetArgs(v uint64) [][]byte {
	return Args(consts.OpSet, EncodeUint(v))
}
