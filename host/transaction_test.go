// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/program"
	"github.com/ava-labs/countervm/utils"
)

func TestTransactionSign(t *testing.T) {
	require := require.New(t)
	factory := newFactory(t)

	tx, err := NewTx(program.KindNoOp, 7, 3, program.SetArgs(99)).Sign(factory)
	require.NoError(err)
	require.Equal(factory.Address(), tx.Caller())
	require.Equal(utils.ToID(tx.Bytes()), tx.ID())
	require.Equal(len(tx.Bytes()), tx.Size())

	parsed, err := UnmarshalTx(tx.Bytes())
	require.NoError(err)
	require.Equal(tx.ID(), parsed.ID())
	require.Equal(program.KindNoOp, parsed.Kind)
	require.Equal(uint64(7), parsed.AppID)
	require.Equal(uint64(3), parsed.Nonce)
	require.Equal(program.SetArgs(99), parsed.Args)

	digest, err := parsed.Digest()
	require.NoError(err)
	require.NoError(parsed.Auth.Verify(context.Background(), digest))
}

func TestTransactionNonceChangesID(t *testing.T) {
	require := require.New(t)
	factory := newFactory(t)

	a, err := NewTx(program.KindNoOp, 1, 1, program.Args(consts.OpAdd)).Sign(factory)
	require.NoError(err)
	b, err := NewTx(program.KindNoOp, 1, 2, program.Args(consts.OpAdd)).Sign(factory)
	require.NoError(err)
	require.NotEqual(a.ID(), b.ID())
}

func TestUnmarshalTxInvalid(t *testing.T) {
	require := require.New(t)
	factory := newFactory(t)

	tx, err := NewTx(program.KindCreate, 0, 1, nil).Sign(factory)
	require.NoError(err)
	digest, err := tx.Digest()
	require.NoError(err)

	_, err = UnmarshalTx(digest)
	require.ErrorIs(err, ErrMissingAuth)

	_, err = UnmarshalTx(tx.Bytes()[:len(tx.Bytes())-1])
	require.Error(err)

	b := append([]byte{}, tx.Bytes()...)
	b[0] = 42
	_, err = UnmarshalTx(b)
	require.ErrorIs(err, program.ErrInvalidKind)

	_, err = UnmarshalTx(make([]byte, MaxTxSize+1))
	require.Error(err)
}
