// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDisabled(t *testing.T) {
	require := require.New(t)

	tracer, err := New(&Config{Enabled: false})
	require.NoError(err)
	require.Equal(Noop, tracer)

	_, span := tracer.Start(context.Background(), "noop")
	span.End()
	require.False(span.SpanContext().IsSampled())
	require.NoError(tracer.Close())
}

func TestNewEnabled(t *testing.T) {
	require := require.New(t)

	// The exporter does not connect until spans are flushed.
	tracer, err := New(&Config{
		Enabled:         true,
		TraceSampleRate: 1,
		AppName:         "countervm",
		Agent:           "test",
		Version:         "v0.0.0",
	})
	require.NoError(err)

	_, span := tracer.Start(context.Background(), "sampled")
	require.True(span.SpanContext().IsSampled())
	span.End()
}
