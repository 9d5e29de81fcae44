// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/crypto"
	"github.com/ava-labs/countervm/crypto/ed25519"
)

func TestED25519SignVerify(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	pk, err := NewED25519PrivateKeyFactory().GeneratePrivateKey()
	require.NoError(err)
	factory, err := GetFactory(pk)
	require.NoError(err)
	require.Equal(pk.Address, factory.Address())

	msg := []byte("increment")
	a, err := factory.Sign(msg)
	require.NoError(err)
	require.Equal(ED25519ID, a.GetTypeID())
	require.Equal(pk.Address, a.Actor())
	require.NoError(a.Verify(ctx, msg))
	require.ErrorIs(a.Verify(ctx, []byte("decrement")), crypto.ErrInvalidSignature)

	parsed, err := Unmarshal(a.Bytes())
	require.NoError(err)
	require.Equal(a.Bytes(), parsed.Bytes())
	require.Equal(pk.Address, parsed.Actor())
	require.NoError(parsed.Verify(ctx, msg))
}

func TestED25519Batch(t *testing.T) {
	require := require.New(t)

	batch := ed25519.NewBatch(ed25519.MinBatchSize)
	for i := 0; i < ed25519.MinBatchSize; i++ {
		pk, err := NewED25519PrivateKeyFactory().GeneratePrivateKey()
		require.NoError(err)
		factory, err := GetFactory(pk)
		require.NoError(err)
		msg := []byte{byte(i)}
		a, err := factory.Sign(msg)
		require.NoError(err)
		a.(*ED25519).AddToBatch(batch, msg)
	}
	require.NoError(batch.VerifyAsync()())
}

func TestLoadPrivateKey(t *testing.T) {
	require := require.New(t)

	f := NewED25519PrivateKeyFactory()
	pk, err := f.GeneratePrivateKey()
	require.NoError(err)
	loaded, err := f.LoadPrivateKey(pk.Bytes)
	require.NoError(err)
	require.Equal(pk.Address, loaded.Address)

	_, err = f.LoadPrivateKey(pk.Bytes[:10])
	require.ErrorIs(err, crypto.ErrInvalidPrivateKey)
}

func TestUnmarshalInvalid(t *testing.T) {
	require := require.New(t)

	_, err := Unmarshal(nil)
	require.ErrorIs(err, ErrUnknownAuth)
	_, err = Unmarshal([]byte{9, 1, 2})
	require.ErrorIs(err, ErrUnknownAuth)
	_, err = Unmarshal([]byte{ED25519ID, 1, 2})
	require.Error(err)

	_, err = GetFactory(&PrivateKey{Address: [33]byte{7}})
	require.ErrorIs(err, ErrInvalidKeyType)
}
