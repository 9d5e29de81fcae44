// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/program"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/state/statemock"
	"github.com/ava-labs/countervm/trace"
	"github.com/ava-labs/countervm/tstate"
)

var (
	owner = codec.CreateAddress(0, ids.GenerateTestID())
	other = codec.CreateAddress(0, ids.GenerateTestID())
)

func scope(appID uint64, txID ids.ID, addrs ...codec.Address) state.Keys {
	s := state.Keys{}
	s.Add(string(NextAppIDKey()), state.All)
	s.Add(string(AppKey(appID)), state.All)
	for _, k := range GlobalKeys(appID) {
		s.Add(string(k), state.All)
	}
	for _, addr := range addrs {
		s.Add(string(LocalKey(appID, addr)), state.All)
	}
	s.Add(string(ResultKey(txID)), state.All)
	return s
}

func TestAppRecord(t *testing.T) {
	require := require.New(t)

	app := &App{
		Status:       program.StatusActive,
		Creator:      owner,
		Version:      3,
		GlobalSchema: program.Schema{NumUint: 1, NumByteSlice: 1},
		LocalSchema:  program.Schema{NumUint: 1, NumByteSlice: 1},
	}
	b := app.Marshal()
	require.Len(b, appLen)
	parsed, err := UnmarshalApp(b)
	require.NoError(err)
	require.Equal(app, parsed)

	_, err = UnmarshalApp(b[:10])
	require.ErrorIs(err, ErrCorruptValue)
	_, err = UnmarshalApp(append(b, 0))
	require.ErrorIs(err, ErrCorruptValue)

	b[0] = byte(program.StatusUninitialized)
	_, err = UnmarshalApp(b)
	require.ErrorIs(err, ErrInvalidStatus)
}

func TestValueEncoding(t *testing.T) {
	require := require.New(t)

	for _, v := range []program.Value{
		{Type: program.UintType, Uint: 42},
		{Type: program.BytesType, Bytes: owner[:]},
	} {
		parsed, err := UnmarshalValue(MarshalValue(v))
		require.NoError(err)
		require.True(v.Equal(parsed))
	}

	_, err := UnmarshalValue(nil)
	require.ErrorIs(err, ErrCorruptValue)
	_, err = UnmarshalValue([]byte{byte(program.UintType), 1})
	require.ErrorIs(err, ErrCorruptValue)
	_, err = UnmarshalValue([]byte{9})
	require.ErrorIs(err, ErrCorruptValue)
}

func TestGlobalStateLifecycle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := memdb.New()
	txID := ids.GenerateTestID()

	ts := tstate.New(8)
	view := ts.NewView(scope(FirstAppID, txID, owner), map[string][]byte{})

	id, err := GetNextAppID(ctx, view)
	require.NoError(err)
	require.Equal(FirstAppID, id)
	require.NoError(SetNextAppID(ctx, view, id+1))

	s, err := GetGlobalState(ctx, view, id)
	require.NoError(err)
	require.Equal(program.StatusUninitialized, s.Status)

	before := s
	require.NoError(program.Execute(&s, &program.Invocation{Kind: program.KindCreate, Caller: owner}))
	require.NoError(program.Execute(&s, &program.Invocation{Kind: program.KindNoOp, Caller: owner, Args: program.SetArgs(9)}))
	require.NoError(SetApp(ctx, view, id, &App{Status: program.StatusActive, Creator: owner}))
	require.NoError(ApplyDelta(ctx, view, id, program.Diff(before, s)))
	require.NoError(SetOptedIn(ctx, view, id, owner))
	require.NoError(PutResult(ctx, view, txID, []byte("ok")))
	view.Commit()
	require.NoError(ts.WriteChanges(ctx, db, trace.Noop))

	ro := state.NewReadOnly(db)
	loaded, err := GetGlobalState(ctx, ro, id)
	require.NoError(err)
	require.Equal(s, loaded)
	next, err := GetNextAppID(ctx, ro)
	require.NoError(err)
	require.Equal(FirstAppID+1, next)
	opted, err := IsOptedIn(ctx, ro, id, owner)
	require.NoError(err)
	require.True(opted)
	opted, err = IsOptedIn(ctx, ro, id, other)
	require.NoError(err)
	require.False(opted)
	result, ok, err := GetResult(ctx, ro, txID)
	require.NoError(err)
	require.True(ok)
	require.Equal([]byte("ok"), result)

	// Delete the application in a second pass.
	sc := scope(id, ids.GenerateTestID(), owner)
	values, err := ReadScope(db, sc)
	require.NoError(err)
	require.Len(values, 5)
	ts = tstate.New(8)
	view = ts.NewView(sc, values)
	before = loaded
	require.NoError(program.Execute(&loaded, &program.Invocation{Kind: program.KindDelete, Caller: owner}))
	require.NoError(ApplyDelta(ctx, view, id, program.Diff(before, loaded)))
	require.NoError(SetApp(ctx, view, id, &App{Status: program.StatusDeleted, Creator: owner}))
	require.NoError(RemoveOptedIn(ctx, view, id, owner))
	view.Commit()
	require.NoError(ts.WriteChanges(ctx, db, trace.Noop))

	loaded, err = GetGlobalState(ctx, ro, id)
	require.NoError(err)
	require.Equal(program.GlobalState{Status: program.StatusDeleted}, loaded)
	for _, k := range GlobalKeys(id) {
		has, err := db.Has(k)
		require.NoError(err)
		require.False(has)
	}
	_, ok, err = GetApp(ctx, ro, id)
	require.NoError(err)
	require.True(ok)
}

func TestApplyDeltaError(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	errWrite := errors.New("write failed")
	mu := statemock.NewMockMutable(ctrl)
	mu.EXPECT().Insert(gomock.Any(), GlobalKey(1, consts.CounterKey), gomock.Any()).Return(errWrite)

	delta := program.StateDelta{
		{Key: consts.CounterKey, Action: program.SetUintAction, Uint: 1},
		{Key: consts.OwnerKey, Action: program.SetBytesAction, Bytes: owner[:]},
	}
	require.ErrorIs(ApplyDelta(ctx, mu, 1, delta), errWrite)
}

func TestKeysDistinct(t *testing.T) {
	require := require.New(t)

	seen := map[string]struct{}{}
	for _, k := range [][]byte{
		NextAppIDKey(),
		AppKey(1),
		AppKey(2),
		GlobalKey(1, consts.OwnerKey),
		GlobalKey(1, consts.CounterKey),
		GlobalKey(2, consts.CounterKey),
		LocalKey(1, owner),
		LocalKey(1, other),
		ResultKey(ids.GenerateTestID()),
	} {
		_, ok := seen[string(k)]
		require.False(ok)
		seen[string(k)] = struct{}{}
	}
}
