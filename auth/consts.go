// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

// IDs are assigned explicitly to avoid accidental remapping.
const (
	// Auth TypeIDs
	ED25519ID uint8 = 0

	ED25519Key = "ed25519"
)
