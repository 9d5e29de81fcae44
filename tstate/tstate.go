// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"go.opentelemetry.io/otel/attribute"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// TState defines a struct for storing temporary state. Views created from
// a TState are committed into it once the invocation they track succeeds,
// and the TState is then written to disk in a single batch.
type TState struct {
	l           sync.RWMutex
	ops         int
	changedKeys map[string]maybe.Maybe[[]byte]
}

// New returns a new instance of TState. Initializes the storage and changedKeys
// maps to have an initial size of [changedSize].
func New(changedSize int) *TState {
	return &TState{
		changedKeys: make(map[string]maybe.Maybe[[]byte], changedSize),
	}
}

func (ts *TState) getChangedValue(_ context.Context, key string) ([]byte, bool, bool) {
	ts.l.RLock()
	defer ts.l.RUnlock()

	if v, ok := ts.changedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	return nil, false, false
}

// PendingChanges returns the number of changed keys.
func (ts *TState) PendingChanges() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return len(ts.changedKeys)
}

// OpIndex returns the number of operations done on ts.
func (ts *TState) OpIndex() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return ts.ops
}

// WriteChanges writes all changes in [TState] to [db].
//
// Once [WriteChanges] is called, [TState] should not be used again.
func (ts *TState) WriteChanges(
	ctx context.Context,
	db database.KeyValueWriterDeleter,
	t trace.Tracer, //nolint:interfacer
) error {
	_, span := t.Start(
		ctx, "TState.WriteChanges",
		oteltrace.WithAttributes(
			attribute.Int("items", len(ts.changedKeys)),
		),
	)
	defer span.End()

	ts.l.Lock()
	defer ts.l.Unlock()

	for key, maybeValue := range ts.changedKeys {
		if maybeValue.IsNothing() {
			if err := db.Delete([]byte(key)); err != nil {
				return err
			}
			continue
		}
		if err := db.Put([]byte(key), maybeValue.Value()); err != nil {
			return err
		}
	}
	return nil
}
