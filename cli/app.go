// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/host"
	"github.com/ava-labs/countervm/program"
	"github.com/ava-labs/countervm/utils"
)

// Submit signs an invocation with the selected key and executes it.
func (h *Handler) Submit(ctx context.Context, kind program.Kind, appID uint64, args [][]byte) (*host.Result, error) {
	pk, _, err := h.GetDefaultKey(false)
	if err != nil {
		return nil, err
	}
	factory, err := auth.GetFactory(pk)
	if err != nil {
		return nil, err
	}
	nonce, err := h.nextNonce()
	if err != nil {
		return nil, err
	}
	tx, err := host.NewTx(kind, appID, nonce, args).Sign(factory)
	if err != nil {
		return nil, err
	}
	result, err := h.host.Submit(ctx, tx)
	if err != nil {
		return nil, err
	}
	printResult(result)
	return result, nil
}

// Create creates a new application and selects it.
func (h *Handler) Create(ctx context.Context) (uint64, error) {
	result, err := h.Submit(ctx, program.KindCreate, 0, nil)
	if err != nil {
		return 0, err
	}
	if !result.Accepted {
		return 0, fmt.Errorf("%w: %s", ErrTransactionRejected, result.Error)
	}
	if err := h.StoreDefaultApp(result.AppID); err != nil {
		return 0, err
	}
	return result.AppID, nil
}

// Invoke runs [kind] against the selected application.
func (h *Handler) Invoke(ctx context.Context, kind program.Kind, args [][]byte) (*host.Result, error) {
	appID, err := h.GetDefaultApp()
	if err != nil {
		return nil, err
	}
	return h.Submit(ctx, kind, appID, args)
}

func (h *Handler) Add(ctx context.Context) (*host.Result, error) {
	return h.Invoke(ctx, program.KindNoOp, program.Args(consts.OpAdd))
}

func (h *Handler) Minus(ctx context.Context) (*host.Result, error) {
	return h.Invoke(ctx, program.KindNoOp, program.Args(consts.OpMinus))
}

func (h *Handler) Set(ctx context.Context, v uint64) (*host.Result, error) {
	return h.Invoke(ctx, program.KindNoOp, program.SetArgs(v))
}

// UseApp selects [appID] for later invocations.
func (h *Handler) UseApp(ctx context.Context, appID uint64) error {
	if _, err := h.host.App(ctx, appID); err != nil {
		return err
	}
	return h.StoreDefaultApp(appID)
}

// Show prints the state of [appID], or of the selected application if
// [appID] is 0.
func (h *Handler) Show(ctx context.Context, appID uint64) (program.GlobalState, error) {
	if appID == 0 {
		var err error
		appID, err = h.GetDefaultApp()
		if err != nil {
			return program.GlobalState{}, err
		}
	}
	app, err := h.host.App(ctx, appID)
	if err != nil {
		return program.GlobalState{}, err
	}
	s, err := h.host.GlobalState(ctx, appID)
	if err != nil {
		return program.GlobalState{}, err
	}
	utils.Outf(
		"{{yellow}}app:{{/}} %d {{yellow}}status:{{/}} %s {{yellow}}version:{{/}} %d {{yellow}}creator:{{/}} %s\n",
		appID,
		app.Status,
		app.Version,
		codec.MustAddressBech32(consts.HRP, app.Creator),
	)
	if s.Active() {
		utils.Outf(
			"{{yellow}}%s:{{/}} %s {{yellow}}%s:{{/}} %d\n",
			consts.OwnerKey,
			codec.MustAddressBech32(consts.HRP, s.Owner),
			consts.CounterKey,
			s.Counter,
		)
	}
	if pk, _, err := h.GetDefaultKey(false); err == nil {
		opted, err := h.host.OptedIn(ctx, appID, pk.Address)
		if err != nil {
			return program.GlobalState{}, err
		}
		utils.Outf("{{yellow}}opted in:{{/}} %t\n", opted)
	}
	return s, nil
}

// Result prints the stored outcome of [txID].
func (h *Handler) Result(ctx context.Context, txID ids.ID) (*host.Result, error) {
	result, err := h.host.Result(ctx, txID)
	if err != nil {
		return nil, err
	}
	printResult(result)
	return result, nil
}

func printResult(r *host.Result) {
	if !r.Accepted {
		utils.Outf(
			"{{red}}%s rejected:{{/}} %s {{red}}txID:{{/}} %s\n",
			r.Kind,
			r.Error,
			r.TxID,
		)
		return
	}
	utils.Outf(
		"{{green}}%s accepted{{/}} {{yellow}}app:{{/}} %d {{yellow}}txID:{{/}} %s\n",
		r.Kind,
		r.AppID,
		r.TxID,
	)
	for _, d := range r.Delta {
		switch d.Action {
		case program.SetUintAction:
			utils.Outf("  {{cyan}}%s{{/}} %s %d\n", d.Action, d.Key, d.Uint)
		case program.SetBytesAction:
			utils.Outf("  {{cyan}}%s{{/}} %s %s\n", d.Action, d.Key, codec.ToHex(d.Bytes))
		default:
			utils.Outf("  {{cyan}}%s{{/}} %s\n", d.Action, d.Key)
		}
	}
}
