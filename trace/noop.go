// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ava-labs/countervm/consts"

	oteltrace "go.opentelemetry.io/otel/trace"
)

var (
	_ trace.Tracer = (*noOpTracer)(nil)

	// Noop is a tracer that records nothing.
	Noop trace.Tracer = &noOpTracer{
		Tracer: noop.NewTracerProvider().Tracer(consts.Name),
	}
)

// noOpTracer is an implementation of trace.Tracer that does nothing.
type noOpTracer struct {
	oteltrace.Tracer
}

func (noOpTracer) Close() error {
	return nil
}
