// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/near/borsh-go"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/program"
	"github.com/ava-labs/countervm/utils"
)

// Result is the outcome of a processed transaction. A transaction the program
// rejected is still a result: [Accepted] is false and no state changed.
type Result struct {
	TxID     ids.ID             `json:"txID"`
	Kind     program.Kind       `json:"kind"`
	AppID    uint64             `json:"appID"`
	Caller   codec.Address      `json:"caller"`
	Accepted bool               `json:"accepted"`
	Error    string             `json:"error,omitempty"`
	Delta    program.StateDelta `json:"delta"`
}

// MaxErrorSize bounds the rejection reason kept in a [Result] so that every
// result fits in its storage slot.
const MaxErrorSize = 256

func newRejected(tx *Transaction, appID uint64, err error) *Result {
	msg := utils.ErrBytes(err)
	if len(msg) > MaxErrorSize {
		msg = msg[:MaxErrorSize]
	}
	return &Result{
		TxID:   tx.ID(),
		Kind:   tx.Kind,
		AppID:  appID,
		Caller: tx.Caller(),
		Error:  string(msg),
		Delta:  program.StateDelta{},
	}
}

// resultRecord is the persisted form of [Result].
type resultRecord struct {
	Kind     uint8
	AppID    uint64
	Caller   []byte
	Accepted bool
	Error    string
	Delta    []deltaRecord
}

type deltaRecord struct {
	Key    string
	Action uint8
	Bytes  []byte
	Uint   uint64
}

func (r *Result) marshal() ([]byte, error) {
	record := resultRecord{
		Kind:     uint8(r.Kind),
		AppID:    r.AppID,
		Caller:   r.Caller[:],
		Accepted: r.Accepted,
		Error:    r.Error,
		Delta:    make([]deltaRecord, len(r.Delta)),
	}
	for i, d := range r.Delta {
		record.Delta[i] = deltaRecord{
			Key:    d.Key,
			Action: uint8(d.Action),
			Bytes:  d.Bytes,
			Uint:   d.Uint,
		}
	}
	return borsh.Serialize(record)
}

func unmarshalResult(txID ids.ID, b []byte) (*Result, error) {
	var record resultRecord
	if err := borsh.Deserialize(&record, b); err != nil {
		return nil, err
	}
	if len(record.Caller) != codec.AddressLen {
		return nil, codec.ErrInvalidSize
	}
	r := &Result{
		TxID:     txID,
		Kind:     program.Kind(record.Kind),
		AppID:    record.AppID,
		Caller:   codec.Address(record.Caller),
		Accepted: record.Accepted,
		Error:    record.Error,
		Delta:    make(program.StateDelta, len(record.Delta)),
	}
	for i, d := range record.Delta {
		r.Delta[i] = program.ValueDelta{
			Key:    d.Key,
			Action: program.DeltaAction(d.Action),
			Bytes:  d.Bytes,
			Uint:   d.Uint,
		}
	}
	return r, nil
}
