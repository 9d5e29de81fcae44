// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/program"
	"github.com/ava-labs/countervm/utils"
)

const (
	// MaxTxSize bounds the encoded size of a [Transaction].
	MaxTxSize = 16 * 1024

	baseSize = consts.ByteLen + 2*consts.Uint64Len
)

// Transaction is a signed request to invoke the counter program.
type Transaction struct {
	Kind program.Kind `json:"kind"`
	// AppID is ignored for [program.KindCreate].
	AppID uint64   `json:"appID"`
	Nonce uint64   `json:"nonce"`
	Args  [][]byte `json:"args"`

	Auth auth.Auth `json:"-"`

	digest []byte
	bytes  []byte
	id     ids.ID
}

func NewTx(kind program.Kind, appID uint64, nonce uint64, args [][]byte) *Transaction {
	return &Transaction{
		Kind:  kind,
		AppID: appID,
		Nonce: nonce,
		Args:  args,
	}
}

// Digest is the message signed by [Transaction.Auth].
func (t *Transaction) Digest() ([]byte, error) {
	if len(t.digest) > 0 {
		return t.digest, nil
	}
	p := codec.NewWriter(baseSize+codec.BytesSliceLen(t.Args), MaxTxSize)
	t.marshalUnsigned(p)
	return p.Bytes(), p.Err()
}

func (t *Transaction) marshalUnsigned(p *codec.Packer) {
	p.PackByte(byte(t.Kind))
	p.PackUint64(t.AppID)
	p.PackUint64(t.Nonce)
	p.PackBytesSlice(t.Args)
}

// Sign signs the transaction with [factory] and returns a fully initialized
// copy parsed back from its bytes.
func (t *Transaction) Sign(factory auth.Factory) (*Transaction, error) {
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	a, err := factory.Sign(msg)
	if err != nil {
		return nil, err
	}
	b := make([]byte, 0, len(msg)+len(a.Bytes()))
	b = append(b, msg...)
	b = append(b, a.Bytes()...)
	return UnmarshalTx(b)
}

func (t *Transaction) Bytes() []byte { return t.bytes }

func (t *Transaction) Size() int { return len(t.bytes) }

func (t *Transaction) ID() ids.ID { return t.id }

// Caller is the identity the program sees.
func (t *Transaction) Caller() codec.Address { return t.Auth.Actor() }

// UnmarshalTx parses a signed transaction.
func UnmarshalTx(b []byte) (*Transaction, error) {
	if len(b) > MaxTxSize {
		return nil, fmt.Errorf("%w: transaction is %d bytes", codec.ErrInvalidSize, len(b))
	}
	p := codec.NewReader(b, MaxTxSize)
	tx := &Transaction{
		Kind:  program.Kind(p.UnpackByte()),
		AppID: p.UnpackUint64(false),
		Nonce: p.UnpackUint64(false),
		Args:  p.UnpackBytesSlice(int(consts.MaxUint8), MaxTxSize),
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	if !tx.Kind.Valid() {
		return nil, fmt.Errorf("%w: %d", program.ErrInvalidKind, tx.Kind)
	}
	digestLen := p.Offset()
	if digestLen == len(b) {
		return nil, ErrMissingAuth
	}
	a, err := auth.Unmarshal(b[digestLen:])
	if err != nil {
		return nil, err
	}
	tx.Auth = a
	tx.digest = b[:digestLen]
	tx.bytes = b
	tx.id = utils.ToID(b)
	return tx, nil
}
