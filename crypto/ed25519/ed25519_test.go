// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/crypto"

	oed25519 "github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
)

var (
	TestPrivateKey = PrivateKey(
		[PrivateKeyLen]byte{
			32, 241, 118, 222, 210, 13, 164, 128, 3, 18,
			109, 215, 176, 215, 168, 171, 194, 181, 4, 11,
			253, 199, 173, 240, 107, 148, 127, 190, 48, 164,
			12, 48, 115, 50, 124, 153, 59, 53, 196, 150, 168,
			143, 151, 235, 222, 128, 136, 161, 9, 40, 139, 85,
			182, 153, 68, 135, 62, 166, 45, 235, 251, 246, 69, 7,
		},
	)
	TestPublicKey = []byte{
		115, 50, 124, 153, 59, 53, 196, 150, 168, 143, 151, 235,
		222, 128, 136, 161, 9, 40, 139, 85, 182, 153, 68, 135,
		62, 166, 45, 235, 251, 246, 69, 7,
	}
	oed25519options = &oed25519.Options{
		Verify: oed25519.VerifyOptionsZIP_215,
	}
)

func TestGeneratePrivateKeyDifferent(t *testing.T) {
	require := require.New(t)
	const numKeysToGenerate int = 10

	m := make(map[PrivateKey]bool)
	for i := 0; i < numKeysToGenerate; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		require.NotEqual(EmptyPrivateKey, priv)
		require.False(m[priv], "Duplicate PrivateKey generated")
		m[priv] = true
	}
}

func TestPublicKeyValid(t *testing.T) {
	require := require.New(t)
	var expectedPubKey PublicKey
	copy(expectedPubKey[:], TestPublicKey)
	require.Equal(expectedPubKey, TestPrivateKey.PublicKey())
}

func TestPrivateKeyFromSeed(t *testing.T) {
	require := require.New(t)

	priv, err := PrivateKeyFromSeed(TestPrivateKey[:PrivateKeySeedLen])
	require.NoError(err)
	require.Equal(TestPrivateKey, priv)

	_, err = PrivateKeyFromSeed([]byte{1, 2, 3})
	require.ErrorIs(err, crypto.ErrInvalidPrivateKey)
}

func TestLoadPrivateKey(t *testing.T) {
	require := require.New(t)

	priv, err := LoadPrivateKey(TestPrivateKey[:])
	require.NoError(err)
	require.Equal(TestPrivateKey, priv)

	// Public key half does not match the seed
	tampered := TestPrivateKey
	tampered[PrivateKeyLen-1]++
	_, err = LoadPrivateKey(tampered[:])
	require.ErrorIs(err, crypto.ErrInvalidPrivateKey)

	_, err = LoadPrivateKey(TestPrivateKey[:PrivateKeySeedLen])
	require.ErrorIs(err, crypto.ErrInvalidPrivateKey)
}

func TestSignSignatureValid(t *testing.T) {
	require := require.New(t)

	msg := []byte("msg")
	var expectedSig Signature
	copy(expectedSig[:], ed25519.Sign(TestPrivateKey[:], msg))
	require.Equal(expectedSig, Sign(msg, TestPrivateKey))
}

func TestVerify(t *testing.T) {
	require := require.New(t)

	msg := []byte("msg")
	sig := Sign(msg, TestPrivateKey)
	require.True(Verify(msg, TestPrivateKey.PublicKey(), sig))
	require.False(Verify([]byte("diff msg"), TestPrivateKey.PublicKey(), sig))
}

// Signatures produced here must be accepted by any other ZIP-215 verifier.
func TestVerifyMatchesZIP215(t *testing.T) {
	require := require.New(t)

	for i := 0; i < 16; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		msg := make([]byte, 128)
		_, err = rand.Read(msg)
		require.NoError(err)

		sig := Sign(msg, priv)
		pub := priv.PublicKey()
		require.True(Verify(msg, pub, sig))
		require.True(oed25519.VerifyWithOptions(pub[:], msg, sig[:], oed25519options))
	}
}

func TestBatchVerify(t *testing.T) {
	for _, tt := range []struct {
		name    string
		corrupt int
	}{
		{name: "valid", corrupt: -1},
		{name: "invalid", corrupt: 10},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			numItems := 64
			bv := NewBatch(numItems)
			for i := 0; i < numItems; i++ {
				priv, err := GeneratePrivateKey()
				require.NoError(err)
				msg := make([]byte, 128)
				_, err = rand.Read(msg)
				require.NoError(err)
				sig := Sign(msg, priv)
				if i == tt.corrupt {
					sig[0]++
				}
				bv.Add(msg, priv.PublicKey(), sig)
			}
			if tt.corrupt < 0 {
				require.NoError(bv.VerifyAsync()())
			} else {
				require.ErrorIs(bv.VerifyAsync()(), crypto.ErrInvalidSignature)
			}
		})
	}
}
