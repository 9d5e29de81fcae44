// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package program implements the counter application: a single unsigned
// counter in global state whose lifecycle (update and delete) is restricted
// to the account that created it.
package program

import (
	"fmt"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
)

// maxSelectorEcho bounds how much of an unknown selector a rejection quotes.
const maxSelectorEcho = 32

// Invocation is a single call of the program.
type Invocation struct {
	Kind   Kind
	Caller codec.Address
	Args   [][]byte
}

// Execute evaluates [inv] against [s]. If the invocation is accepted, [s] is
// updated to the resulting state. If it is rejected, [s] is left untouched
// and the reason is returned.
func Execute(s *GlobalState, inv *Invocation) error {
	next, err := transition(*s, inv)
	if err != nil {
		return err
	}
	*s = next
	return nil
}

func transition(s GlobalState, inv *Invocation) (GlobalState, error) {
	if !inv.Kind.Valid() {
		return s, fmt.Errorf("%w: %d", ErrInvalidKind, inv.Kind)
	}
	if inv.Kind == KindCreate {
		if s.Status != StatusUninitialized {
			return s, fmt.Errorf("%w: status is %s", ErrAlreadyCreated, s.Status)
		}
		return GlobalState{
			Status:  StatusActive,
			Owner:   inv.Caller,
			Counter: 0,
		}, nil
	}
	if !s.Active() {
		return s, fmt.Errorf("%w: cannot %s while %s", ErrUninitialized, inv.Kind, s.Status)
	}

	switch inv.Kind {
	case KindNoOp:
		return call(s, inv.Args)
	case KindOptIn, KindCloseOut:
		return s, nil
	case KindUpdate:
		if !s.IsOwner(inv.Caller) {
			return s, ErrUnauthorized
		}
		return s, nil
	case KindDelete:
		if !s.IsOwner(inv.Caller) {
			return s, ErrUnauthorized
		}
		return GlobalState{Status: StatusDeleted}, nil
	default:
		// Clearing local state never reaches the program.
		return s, fmt.Errorf("%w: %s", ErrInvalidKind, inv.Kind)
	}
}

// call handles a normal invocation. Selectors are compared in the order
// minus, add, set.
func call(s GlobalState, args [][]byte) (GlobalState, error) {
	if len(args) == 0 {
		return s, fmt.Errorf("%w: missing selector", ErrUnknownOperation)
	}
	switch op := string(args[0]); op {
	case consts.OpMinus:
		if s.Counter > 0 {
			s.Counter--
		}
		return s, nil
	case consts.OpAdd:
		next, err := smath.Add(s.Counter, 1)
		if err != nil {
			return s, ErrOverflow
		}
		s.Counter = next
		return s, nil
	case consts.OpSet:
		if len(args) < 2 {
			return s, fmt.Errorf("%w: missing value", ErrMalformedArgument)
		}
		v, err := DecodeUint(args[1])
		if err != nil {
			return s, err
		}
		s.Counter = v
		return s, nil
	default:
		if len(op) > maxSelectorEcho {
			op = op[:maxSelectorEcho] + "..."
		}
		return s, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
}
