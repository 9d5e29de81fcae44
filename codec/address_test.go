// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/json"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

func TestAddress(t *testing.T) {
	require := require.New(t)
	typeID := byte(0)
	addrID := ids.GenerateTestID()

	addr := CreateAddress(typeID, addrID)
	addrStr, err := addr.MarshalText()
	require.NoError(err)

	var parsedAddr Address
	require.NoError(parsedAddr.UnmarshalText(addrStr))
	require.Equal(addr, parsedAddr)
}

func TestAddressJSON(t *testing.T) {
	require := require.New(t)
	addr := CreateAddress(byte(0), ids.GenerateTestID())

	addrJSONBytes, err := json.Marshal(addr)
	require.NoError(err)

	var parsedAddr Address
	require.NoError(json.Unmarshal(addrJSONBytes, &parsedAddr))
	require.Equal(addr, parsedAddr)
}

func TestStringToAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		err  error
	}{
		{
			name: "prefixed",
			in:   CreateAddress(1, ids.Empty).String(),
		},
		{
			name: "bare",
			in:   CreateAddress(1, ids.Empty).String()[2:],
		},
		{
			name: "short",
			in:   "0x0102",
			err:  ErrInvalidSize,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			addr, err := StringToAddress(tt.in)
			require.ErrorIs(err, tt.err)
			if tt.err == nil {
				require.Equal(CreateAddress(1, ids.Empty), addr)
			}
		})
	}
}

func TestAddressBech32(t *testing.T) {
	require := require.New(t)
	addr := CreateAddress(0, ids.GenerateTestID())

	s, err := AddressBech32("counter", addr)
	require.NoError(err)
	require.Contains(s, "counter1")

	parsed, err := ParseAddressBech32("counter", s)
	require.NoError(err)
	require.Equal(addr, parsed)

	_, err = ParseAddressBech32("other", s)
	require.ErrorIs(err, ErrIncorrectHRP)
}
