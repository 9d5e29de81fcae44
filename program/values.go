// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"bytes"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
)

type ValueType uint8

const (
	BytesType ValueType = 1
	UintType  ValueType = 2
)

func (t ValueType) String() string {
	switch t {
	case BytesType:
		return "bytes"
	case UintType:
		return "uint"
	default:
		return "unknown"
	}
}

// Value is a typed global state value.
type Value struct {
	Type  ValueType `json:"type"`
	Bytes []byte    `json:"bytes,omitempty"`
	Uint  uint64    `json:"uint,omitempty"`
}

func (v Value) Equal(o Value) bool {
	return v.Type == o.Type && v.Uint == o.Uint && bytes.Equal(v.Bytes, o.Bytes)
}

// Values returns the global key/value pairs persisted for [s]. Only an
// active application has any.
func Values(s GlobalState) map[string]Value {
	if !s.Active() {
		return map[string]Value{}
	}
	return map[string]Value{
		consts.OwnerKey:   {Type: BytesType, Bytes: s.Owner[:]},
		consts.CounterKey: {Type: UintType, Uint: s.Counter},
	}
}

// FromValues rebuilds an active [GlobalState] from its persisted values.
func FromValues(values map[string]Value) (GlobalState, error) {
	owner, ok := values[consts.OwnerKey]
	if !ok || owner.Type != BytesType || len(owner.Bytes) != codec.AddressLen {
		return GlobalState{}, fmt.Errorf("%w: %s", ErrInvalidValueType, consts.OwnerKey)
	}
	counter, ok := values[consts.CounterKey]
	if !ok || counter.Type != UintType {
		return GlobalState{}, fmt.Errorf("%w: %s", ErrInvalidValueType, consts.CounterKey)
	}
	return GlobalState{
		Status:  StatusActive,
		Owner:   codec.Address(owner.Bytes),
		Counter: counter.Uint,
	}, nil
}

// Schema is the number of values of each type an application may keep.
type Schema struct {
	NumUint      uint64 `json:"numUint"      yaml:"numUint"`
	NumByteSlice uint64 `json:"numByteSlice" yaml:"numByteSlice"`
}

// Check returns [ErrSchemaViolation] if [values] holds more values of a type
// than [s] allows.
func (s Schema) Check(values map[string]Value) error {
	var uints, byteSlices uint64
	for k, v := range values {
		switch v.Type {
		case UintType:
			uints++
		case BytesType:
			byteSlices++
		default:
			return fmt.Errorf("%w: %s", ErrInvalidValueType, k)
		}
	}
	if uints > s.NumUint {
		return fmt.Errorf("%w: %d uints > %d", ErrSchemaViolation, uints, s.NumUint)
	}
	if byteSlices > s.NumByteSlice {
		return fmt.Errorf("%w: %d byte slices > %d", ErrSchemaViolation, byteSlices, s.NumByteSlice)
	}
	return nil
}

type DeltaAction uint8

const (
	SetBytesAction DeltaAction = 1
	SetUintAction  DeltaAction = 2
	DeleteAction   DeltaAction = 3
)

func (a DeltaAction) String() string {
	switch a {
	case SetBytesAction:
		return "set-bytes"
	case SetUintAction:
		return "set-uint"
	case DeleteAction:
		return "delete"
	default:
		return "unknown"
	}
}

// ValueDelta is the change applied to a single global key.
type ValueDelta struct {
	Key    string      `json:"key"`
	Action DeltaAction `json:"action"`
	Bytes  []byte      `json:"bytes,omitempty"`
	Uint   uint64      `json:"uint,omitempty"`
}

// StateDelta is ordered by key.
type StateDelta []ValueDelta

// Diff returns the changes that turn the values of [before] into those of
// [after]. Unchanged keys are omitted.
func Diff(before, after GlobalState) StateDelta {
	prev, next := Values(before), Values(after)
	keys := maps.Keys(prev)
	for k := range next {
		if _, ok := prev[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	delta := StateDelta{}
	for _, k := range keys {
		pv, hadPrev := prev[k]
		nv, hasNext := next[k]
		switch {
		case !hasNext:
			delta = append(delta, ValueDelta{Key: k, Action: DeleteAction})
		case hadPrev && pv.Equal(nv):
		case nv.Type == UintType:
			delta = append(delta, ValueDelta{Key: k, Action: SetUintAction, Uint: nv.Uint})
		default:
			delta = append(delta, ValueDelta{Key: k, Action: SetBytesAction, Bytes: nv.Bytes})
		}
	}
	return delta
}
