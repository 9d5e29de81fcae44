// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/cli/prompt"
	"github.com/ava-labs/countervm/config"
	"github.com/ava-labs/countervm/program"
)

func newTestHandler(t *testing.T) *Handler {
	c := config.NewDefaultConfig()
	c.DataDir = t.TempDir()
	c.Pebble.Sync = false
	h, err := New(c, logging.NoLog{})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, h.Close())
	})
	return h
}

func TestKeyStore(t *testing.T) {
	require := require.New(t)
	h := newTestHandler(t)

	_, _, err := h.GetDefaultKey(false)
	require.ErrorIs(err, ErrNoKeys)

	first, err := h.GenerateKey()
	require.NoError(err)
	second, err := h.GenerateKey()
	require.NoError(err)

	keys, err := h.GetKeys()
	require.NoError(err)
	require.Len(keys, 2)
	require.Equal(first.Address, keys[0].Address)
	require.Equal(second.Address, keys[1].Address)

	selected, index, err := h.GetDefaultKey(false)
	require.NoError(err)
	require.Equal(1, index)
	require.Equal(second.Address, selected.Address)

	require.NoError(h.UseKey(0))
	selected, _, err = h.GetDefaultKey(false)
	require.NoError(err)
	require.Equal(first.Address, selected.Address)

	require.ErrorIs(h.UseKey(2), prompt.ErrIndexOutOfRange)
	require.NoError(h.ListKeys())
}

func TestNonces(t *testing.T) {
	require := require.New(t)
	h := newTestHandler(t)

	for i := uint64(0); i < 3; i++ {
		nonce, err := h.nextNonce()
		require.NoError(err)
		require.Equal(i, nonce)
	}
}

func TestHandlerLifecycle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	h := newTestHandler(t)

	_, err := h.Add(ctx)
	require.ErrorIs(err, ErrNoApp)

	_, err = h.GenerateKey()
	require.NoError(err)
	appID, err := h.Create(ctx)
	require.NoError(err)

	result, err := h.Add(ctx)
	require.NoError(err)
	require.True(result.Accepted)
	result, err = h.Set(ctx, 41)
	require.NoError(err)
	require.True(result.Accepted)
	result, err = h.Add(ctx)
	require.NoError(err)
	require.True(result.Accepted)

	s, err := h.Show(ctx, 0)
	require.NoError(err)
	require.Equal(uint64(42), s.Counter)

	stored, err := h.Result(ctx, result.TxID)
	require.NoError(err)
	require.Equal(appID, stored.AppID)

	// Another key cannot delete the application.
	_, err = h.GenerateKey()
	require.NoError(err)
	result, err = h.Invoke(ctx, program.KindDelete, nil)
	require.NoError(err)
	require.False(result.Accepted)

	require.NoError(h.UseKey(0))
	result, err = h.Invoke(ctx, program.KindDelete, nil)
	require.NoError(err)
	require.True(result.Accepted)

	s, err = h.Show(ctx, appID)
	require.NoError(err)
	require.Equal(program.StatusDeleted, s.Status)
}

func TestParseScript(t *testing.T) {
	require := require.New(t)

	commands, err := ParseScript(strings.NewReader(`
# counter walkthrough
create
ADD
set "10"

show 1
`))
	require.NoError(err)
	require.Len(commands, 4)
	require.Equal(&Command{Line: 3, Name: "create", Args: []string{}}, commands[0])
	require.Equal("add", commands[1].Name)
	require.Equal([]string{"10"}, commands[2].Args)
	require.Equal(7, commands[3].Line)

	_, err = ParseScript(strings.NewReader(`set "10`))
	require.ErrorIs(err, ErrInvalidScriptLine)
}

func TestRunScript(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	h := newTestHandler(t)

	require.NoError(h.RunScript(ctx, strings.NewReader(`
key
key
use 0
create
add
add
minus
set 10
add
expect 11
use 1
optin
delete
expect 11
minus
expect 10
use 0
delete
expect deleted
use 1
clear
`)))

	stats := h.Host().Stats()
	require.Equal(uint64(10), stats.Accepted)
	require.Equal(uint64(1), stats.Rejected)
}

func TestRunScriptErrors(t *testing.T) {
	tests := []struct {
		name        string
		script      string
		expectedErr error
	}{
		{
			name:        "unknown command",
			script:      "key\nmultiply",
			expectedErr: ErrUnknownCommand,
		},
		{
			name:        "missing argument",
			script:      "key\ncreate\nset",
			expectedErr: ErrInvalidScriptLine,
		},
		{
			name:        "bad expectation",
			script:      "key\ncreate\nadd\nexpect 2",
			expectedErr: ErrExpectationFailed,
		},
		{
			name:        "no key",
			script:      "create",
			expectedErr: ErrNoKeys,
		},
		{
			name:        "no app",
			script:      "key\nadd",
			expectedErr: ErrNoApp,
		},
		{
			name:        "key index overflows int",
			script:      "key\nuse 18446744073709551615",
			expectedErr: ErrInvalidScriptLine,
		},
		{
			name:        "negative key index",
			script:      "key\nuse -1",
			expectedErr: prompt.ErrIndexOutOfRange,
		},
		{
			name:        "key index past end",
			script:      "key\nuse 1",
			expectedErr: prompt.ErrIndexOutOfRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			err := h.RunScript(context.Background(), strings.NewReader(tt.script))
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}
