// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package host runs the counter program against persistent state. Every
// transaction executes in its own view of state and is committed in a single
// database batch, or not at all.
package host

import (
	"context"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/crypto/ed25519"
	"github.com/ava-labs/countervm/lockmap"
	"github.com/ava-labs/countervm/program"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
	"github.com/ava-labs/countervm/tstate"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// createLock serializes creates, which allocate IDs. No application is ever
// assigned ID 0.
const createLock uint64 = 0

type Host struct {
	log     logging.Logger
	db      state.Database
	tracer  trace.Tracer
	config  Config
	metrics *metrics

	// Transactions against the same application are processed one at a
	// time. Creates share a single lock since they allocate IDs.
	locks *lockmap.Lockmap[uint64]

	accepted atomic.Uint64
	rejected atomic.Uint64
}

// Stats counts the results produced since the host started.
type Stats struct {
	Accepted uint64 `json:"accepted"`
	Rejected uint64 `json:"rejected"`
}

func New(
	log logging.Logger,
	db state.Database,
	tracer trace.Tracer,
	registerer prometheus.Registerer,
	config Config,
) (*Host, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Host{
		log:     log,
		db:      db,
		tracer:  tracer,
		config:  config,
		metrics: m,
		locks:   lockmap.New[uint64](16),
	}, nil
}

// Submit verifies and executes [tx]. A transaction the program rejects
// returns a [Result] with Accepted set to false and a nil error. An error is
// returned only if [tx] could not be processed at all, in which case nothing
// was written.
func (h *Host) Submit(ctx context.Context, tx *Transaction) (*Result, error) {
	ctx, span := h.tracer.Start(
		ctx, "Host.Submit",
		oteltrace.WithAttributes(
			attribute.Stringer("txID", tx.ID()),
			attribute.Stringer("kind", tx.Kind),
		),
	)
	defer span.End()

	if err := h.verifyLimits(tx); err != nil {
		h.metrics.failed.Inc()
		return nil, err
	}
	if h.config.VerifySignatures {
		if err := verifyTx(ctx, tx); err != nil {
			h.metrics.failed.Inc()
			return nil, err
		}
	}
	return h.process(ctx, tx)
}

// SubmitBatch verifies every signature in [txs] concurrently and then
// executes the transactions in order. If any signature is invalid, nothing
// is executed. If a transaction cannot be processed, the results of the
// transactions before it are returned with the error.
func (h *Host) SubmitBatch(ctx context.Context, txs []*Transaction) ([]*Result, error) {
	ctx, span := h.tracer.Start(
		ctx, "Host.SubmitBatch",
		oteltrace.WithAttributes(
			attribute.Int("txs", len(txs)),
		),
	)
	defer span.End()

	for i, tx := range txs {
		if err := h.verifyLimits(tx); err != nil {
			h.metrics.failed.Add(float64(len(txs)))
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	if h.config.VerifySignatures {
		if err := h.verifyBatch(ctx, txs); err != nil {
			h.metrics.failed.Add(float64(len(txs)))
			return nil, err
		}
	}

	results := make([]*Result, 0, len(txs))
	for i, tx := range txs {
		result, err := h.process(ctx, tx)
		if err != nil {
			return results, fmt.Errorf("transaction %d (%s): %w", i, tx.ID(), err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (h *Host) verifyLimits(tx *Transaction) error {
	if tx.Auth == nil {
		return ErrMissingAuth
	}
	if len(tx.Args) > h.config.MaxArgs {
		return fmt.Errorf("%w: %d > %d", ErrTooManyArgs, len(tx.Args), h.config.MaxArgs)
	}
	for i, arg := range tx.Args {
		if len(arg) > h.config.MaxArgSize {
			return fmt.Errorf("%w: argument %d is %d bytes (max %d)", ErrArgsTooLarge, i, len(arg), h.config.MaxArgSize)
		}
	}
	return nil
}

func verifyTx(ctx context.Context, tx *Transaction) error {
	msg, err := tx.Digest()
	if err != nil {
		return err
	}
	if err := tx.Auth.Verify(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return nil
}

func (h *Host) verifyBatch(ctx context.Context, txs []*Transaction) error {
	parallelism := max(h.config.VerifyParallelism, 1)
	chunkSize := max((len(txs)+parallelism-1)/parallelism, ed25519.MinBatchSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for start := 0; start < len(txs); start += chunkSize {
		chunk := txs[start:min(start+chunkSize, len(txs))]
		g.Go(func() error {
			return verifyChunk(gctx, chunk)
		})
	}
	return g.Wait()
}

func verifyChunk(ctx context.Context, txs []*Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(txs) < ed25519.MinBatchSize {
		for _, tx := range txs {
			if err := verifyTx(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	}

	batch := ed25519.NewBatch(len(txs))
	for _, tx := range txs {
		msg, err := tx.Digest()
		if err != nil {
			return err
		}
		a, ok := tx.Auth.(*auth.ED25519)
		if !ok {
			if err := verifyTx(ctx, tx); err != nil {
				return err
			}
			continue
		}
		a.AddToBatch(batch, msg)
	}
	if err := batch.VerifyAsync()(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return nil
}

func lockKey(tx *Transaction) uint64 {
	if tx.Kind == program.KindCreate {
		return createLock
	}
	return tx.AppID
}

func (h *Host) process(ctx context.Context, tx *Transaction) (*Result, error) {
	defer h.locks.Lock(lockKey(tx))()

	start := time.Now()
	result, err := h.execute(ctx, tx)
	if err != nil {
		h.metrics.failed.Inc()
		h.log.Debug("transaction failed",
			zap.Stringer("txID", tx.ID()),
			zap.Stringer("kind", tx.Kind),
			zap.Uint64("appID", tx.AppID),
			zap.Error(err),
		)
		return nil, err
	}
	h.metrics.executeLatency.Observe(time.Since(start).Seconds())

	if !result.Accepted {
		h.rejected.Inc()
		h.metrics.rejected.Inc()
		h.log.Debug("transaction rejected",
			zap.Stringer("txID", tx.ID()),
			zap.Stringer("kind", tx.Kind),
			zap.Uint64("appID", result.AppID),
			zap.String("reason", result.Error),
		)
		return result, nil
	}

	h.accepted.Inc()
	h.metrics.accepted.Inc()
	switch tx.Kind {
	case program.KindCreate:
		h.metrics.liveApps.Inc()
	case program.KindDelete:
		h.metrics.liveApps.Dec()
	}
	h.log.Info("transaction accepted",
		zap.Stringer("txID", tx.ID()),
		zap.Stringer("kind", tx.Kind),
		zap.Uint64("appID", result.AppID),
		zap.Int("changes", len(result.Delta)),
	)
	return result, nil
}

func (h *Host) scope(appID uint64, tx *Transaction) state.Keys {
	s := make(state.Keys, 6)
	s.Add(string(storage.AppKey(appID)), state.All)
	for _, k := range storage.GlobalKeys(appID) {
		s.Add(string(k), state.All)
	}
	s.Add(string(storage.LocalKey(appID, tx.Caller())), state.All)
	s.Add(string(storage.ResultKey(tx.ID())), state.Allocate)
	if tx.Kind == program.KindCreate {
		s.Add(string(storage.NextAppIDKey()), state.All)
	}
	return s
}

func (h *Host) execute(ctx context.Context, tx *Transaction) (*Result, error) {
	ctx, span := h.tracer.Start(ctx, "Host.execute")
	defer span.End()

	ro := state.NewReadOnly(h.db)
	_, exists, err := storage.GetResult(ctx, ro, tx.ID())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTx, tx.ID())
	}

	appID := tx.AppID
	if tx.Kind == program.KindCreate {
		appID, err = storage.GetNextAppID(ctx, ro)
		if err != nil {
			return nil, err
		}
	}

	scope := h.scope(appID, tx)
	values, err := storage.ReadScope(h.db, scope)
	if err != nil {
		return nil, err
	}
	ts := tstate.New(len(scope))
	view := ts.NewView(scope, values)

	result, err := h.apply(ctx, view, appID, tx)
	if err != nil {
		return nil, err
	}
	if !result.Accepted {
		view.Rollback(ctx, 0)
		if tx.Kind == program.KindCreate {
			result.AppID = 0
		}
	}
	b, err := result.marshal()
	if err != nil {
		return nil, err
	}
	if err := storage.PutResult(ctx, view, tx.ID(), b); err != nil {
		return nil, err
	}
	view.Commit()
	if err := h.commit(ctx, ts); err != nil {
		return nil, err
	}
	return result, nil
}

// apply runs [tx] against [mu]. Rejections are reported in the returned
// [Result]. An error means [mu] may be partially written and must be
// discarded.
func (h *Host) apply(ctx context.Context, mu state.Mutable, appID uint64, tx *Transaction) (*Result, error) {
	caller := tx.Caller()
	app, exists, err := storage.GetApp(ctx, mu, appID)
	if err != nil {
		return nil, err
	}
	if !exists && tx.Kind != program.KindCreate {
		return nil, fmt.Errorf("%w: %d", ErrUnknownApp, appID)
	}

	switch tx.Kind {
	case program.KindOptIn, program.KindCloseOut, program.KindClearState:
		opted, err := storage.IsOptedIn(ctx, mu, appID, caller)
		if err != nil {
			return nil, err
		}
		if tx.Kind == program.KindOptIn && opted {
			return newRejected(tx, appID, ErrAlreadyOptedIn), nil
		}
		if tx.Kind != program.KindOptIn && !opted {
			return newRejected(tx, appID, ErrNotOptedIn), nil
		}
	}

	// Clearing local state always succeeds and never reaches the program.
	if tx.Kind == program.KindClearState {
		if err := storage.RemoveOptedIn(ctx, mu, appID, caller); err != nil {
			return nil, err
		}
		return &Result{
			TxID:     tx.ID(),
			Kind:     tx.Kind,
			AppID:    appID,
			Caller:   caller,
			Accepted: true,
			Delta:    program.StateDelta{},
		}, nil
	}

	before, err := storage.GetGlobalState(ctx, mu, appID)
	if err != nil {
		return nil, err
	}
	after := before
	inv := &program.Invocation{
		Kind:   tx.Kind,
		Caller: caller,
		Args:   tx.Args,
	}
	if err := program.Execute(&after, inv); err != nil {
		return newRejected(tx, appID, err), nil
	}
	// Existing applications keep the schema they were created with.
	schema := h.config.GlobalSchema
	if exists {
		schema = app.GlobalSchema
	}
	if err := schema.Check(program.Values(after)); err != nil {
		return newRejected(tx, appID, err), nil
	}
	delta := program.Diff(before, after)
	if err := storage.ApplyDelta(ctx, mu, appID, delta); err != nil {
		return nil, err
	}

	switch tx.Kind {
	case program.KindCreate:
		app = &storage.App{
			Status:       program.StatusActive,
			Creator:      caller,
			Version:      1,
			GlobalSchema: h.config.GlobalSchema,
			LocalSchema:  h.config.LocalSchema,
		}
		if err := storage.SetApp(ctx, mu, appID, app); err != nil {
			return nil, err
		}
		if err := storage.SetNextAppID(ctx, mu, appID+1); err != nil {
			return nil, err
		}
	case program.KindUpdate:
		app.Version++
		if err := storage.SetApp(ctx, mu, appID, app); err != nil {
			return nil, err
		}
	case program.KindDelete:
		app.Status = program.StatusDeleted
		if err := storage.SetApp(ctx, mu, appID, app); err != nil {
			return nil, err
		}
	case program.KindOptIn:
		if err := storage.SetOptedIn(ctx, mu, appID, caller); err != nil {
			return nil, err
		}
	case program.KindCloseOut:
		if err := storage.RemoveOptedIn(ctx, mu, appID, caller); err != nil {
			return nil, err
		}
	}
	return &Result{
		TxID:     tx.ID(),
		Kind:     tx.Kind,
		AppID:    appID,
		Caller:   caller,
		Accepted: true,
		Delta:    delta,
	}, nil
}

func (h *Host) commit(ctx context.Context, ts *tstate.TState) error {
	ctx, span := h.tracer.Start(ctx, "Host.commit")
	defer span.End()

	batch := h.db.NewBatch()
	if err := ts.WriteChanges(ctx, batch, h.tracer); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	h.metrics.stateChanges.Add(float64(ts.PendingChanges()))
	return nil
}

// GlobalState returns the program state of [appID]. An ID that was never
// allocated reads as uninitialized.
func (h *Host) GlobalState(ctx context.Context, appID uint64) (program.GlobalState, error) {
	defer h.locks.RLock(appID)()

	return storage.GetGlobalState(ctx, state.NewReadOnly(h.db), appID)
}

// App returns the record of [appID].
func (h *Host) App(ctx context.Context, appID uint64) (*storage.App, error) {
	defer h.locks.RLock(appID)()

	app, exists, err := storage.GetApp(ctx, state.NewReadOnly(h.db), appID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %d", ErrUnknownApp, appID)
	}
	return app, nil
}

// OptedIn reports whether [addr] holds local state for [appID].
func (h *Host) OptedIn(ctx context.Context, appID uint64, addr codec.Address) (bool, error) {
	defer h.locks.RLock(appID)()

	return storage.IsOptedIn(ctx, state.NewReadOnly(h.db), appID, addr)
}

// Result returns the stored outcome of [txID].
func (h *Host) Result(ctx context.Context, txID ids.ID) (*Result, error) {
	b, exists, err := storage.GetResult(ctx, state.NewReadOnly(h.db), txID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, txID)
	}
	return unmarshalResult(txID, b)
}

func (h *Host) Stats() Stats {
	return Stats{
		Accepted: h.accepted.Load(),
		Rejected: h.rejected.Load(),
	}
}
