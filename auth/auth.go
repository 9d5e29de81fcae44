// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/crypto/ed25519"
)

var (
	// ErrInvalidKeyType is returned when an invalid key type is provided
	ErrInvalidKeyType        = errors.New("invalid key type")
	ErrInvalidPrivateKeySize = errors.New("invalid private key size")
	ErrUnknownAuth           = errors.New("unknown auth type")
)

// Auth proves that the holder of a key authorized a message.
type Auth interface {
	GetTypeID() uint8
	// Verify checks the signature over [msg] without touching state.
	Verify(ctx context.Context, msg []byte) error
	// Actor is the address the message is executed as.
	Actor() codec.Address
	Bytes() []byte
}

// Factory signs messages with a private key.
type Factory interface {
	Sign(msg []byte) (Auth, error)
	Address() codec.Address
}

// PrivateKey is a key of any supported type paired with its address.
type PrivateKey struct {
	Address codec.Address
	Bytes   []byte
}

// GetFactory returns the [Factory] for a given private key.
func GetFactory(pk *PrivateKey) (Factory, error) {
	switch pk.Address[0] {
	case ED25519ID:
		if len(pk.Bytes) != ed25519.PrivateKeyLen {
			return nil, ErrInvalidPrivateKeySize
		}
		return NewED25519Factory(ed25519.PrivateKey(pk.Bytes)), nil
	default:
		return nil, ErrInvalidKeyType
	}
}

// Unmarshal parses an [Auth] from its type-prefixed encoding.
func Unmarshal(b []byte) (Auth, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrUnknownAuth)
	}
	switch b[0] {
	case ED25519ID:
		return UnmarshalED25519(b)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAuth, b[0])
	}
}
