// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// AddressBech32 returns a Bech32 address from [hrp] and [a].
func AddressBech32(hrp string, a Address) (string, error) {
	fiveBits, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, fiveBits)
}

// MustAddressBech32 is used for display only.
func MustAddressBech32(hrp string, a Address) string {
	s, err := AddressBech32(hrp, a)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseAddressBech32 returns the [Address] encoded in [saddr] if its human
// readable part matches [hrp].
func ParseAddressBech32(hrp, saddr string) (Address, error) {
	phrp, p, err := bech32.Decode(saddr)
	if err != nil {
		return EmptyAddress, err
	}
	if phrp != hrp {
		return EmptyAddress, fmt.Errorf("%w: %s != %s", ErrIncorrectHRP, phrp, hrp)
	}
	b, err := bech32.ConvertBits(p, 5, 8, false)
	if err != nil {
		return EmptyAddress, err
	}
	if len(b) != AddressLen {
		return EmptyAddress, ErrInsufficientLength
	}
	return Address(b), nil
}
