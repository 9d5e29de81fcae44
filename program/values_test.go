// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/consts"
)

func TestValuesRoundTrip(t *testing.T) {
	require := require.New(t)

	s := active(alice, 12)
	values := Values(s)
	require.Len(values, 2)
	loaded, err := FromValues(values)
	require.NoError(err)
	require.Equal(s, loaded)

	require.Empty(Values(GlobalState{Status: StatusDeleted}))

	delete(values, consts.CounterKey)
	_, err = FromValues(values)
	require.ErrorIs(err, ErrInvalidValueType)
}

func TestSchemaCheck(t *testing.T) {
	require := require.New(t)

	schema := Schema{NumUint: consts.GlobalInts, NumByteSlice: consts.GlobalBytes}
	require.NoError(schema.Check(Values(active(alice, 1))))

	require.ErrorIs(Schema{NumUint: 0, NumByteSlice: 1}.Check(Values(active(alice, 1))), ErrSchemaViolation)
	require.ErrorIs(Schema{NumUint: 1, NumByteSlice: 0}.Check(Values(active(alice, 1))), ErrSchemaViolation)
	require.ErrorIs(schema.Check(map[string]Value{"x": {}}), ErrInvalidValueType)
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		before   GlobalState
		after    GlobalState
		expected StateDelta
	}{
		{
			name:   "create",
			before: GlobalState{},
			after:  active(alice, 0),
			expected: StateDelta{
				{Key: consts.CounterKey, Action: SetUintAction, Uint: 0},
				{Key: consts.OwnerKey, Action: SetBytesAction, Bytes: alice[:]},
			},
		},
		{
			name:   "increment",
			before: active(alice, 1),
			after:  active(alice, 2),
			expected: StateDelta{
				{Key: consts.CounterKey, Action: SetUintAction, Uint: 2},
			},
		},
		{
			name:     "unchanged",
			before:   active(alice, 0),
			after:    active(alice, 0),
			expected: StateDelta{},
		},
		{
			name:   "delete",
			before: active(alice, 5),
			after:  GlobalState{Status: StatusDeleted},
			expected: StateDelta{
				{Key: consts.CounterKey, Action: DeleteAction},
				{Key: consts.OwnerKey, Action: DeleteAction},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.before, tt.after)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Fatalf("unexpected delta (-want +got):\n%s", diff)
			}
		})
	}
}
