// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/keys"
	"github.com/ava-labs/countervm/program"
	"github.com/ava-labs/countervm/state"
)

// State
// 0x0/ (next application ID)
// 0x1/ (application records)
//   -> [appID] => status|creator|version|schemas
// 0x2/ (global values)
//   -> [appID|key] => type|value
// 0x3/ (opted in accounts)
//   -> [appID|address] => marker
// 0x4/ (invocation results)
//   -> [txID] => result

const (
	nextAppIDPrefix byte = 0x0
	appPrefix       byte = 0x1
	globalPrefix    byte = 0x2
	localPrefix     byte = 0x3
	resultPrefix    byte = 0x4
)

const (
	NextAppIDChunks uint16 = 1
	AppChunks       uint16 = 2
	GlobalChunks    uint16 = 2
	LocalChunks     uint16 = 1
	ResultChunks    uint16 = 16
)

// FirstAppID is assigned to the first application created.
const FirstAppID uint64 = 1

const (
	uintValueLen = consts.ByteLen + consts.Uint64Len
	appLen       = consts.ByteLen + codec.AddressLen + 5*consts.Uint64Len
)

var optedIn = []byte{0x1}

// App is the record kept for every application ever created. The record
// outlives a deleted application so its ID is never reused.
type App struct {
	Status       program.Status
	Creator      codec.Address
	Version      uint64
	GlobalSchema program.Schema
	LocalSchema  program.Schema
}

func (a *App) Marshal() []byte {
	p := codec.NewWriter(appLen, appLen)
	p.PackByte(byte(a.Status))
	p.PackAddress(a.Creator)
	p.PackUint64(a.Version)
	p.PackUint64(a.GlobalSchema.NumUint)
	p.PackUint64(a.GlobalSchema.NumByteSlice)
	p.PackUint64(a.LocalSchema.NumUint)
	p.PackUint64(a.LocalSchema.NumByteSlice)
	return p.Bytes()
}

func UnmarshalApp(b []byte) (*App, error) {
	p := codec.NewReader(b, appLen)
	var a App
	a.Status = program.Status(p.UnpackByte())
	p.UnpackAddress(&a.Creator)
	a.Version = p.UnpackUint64(false)
	a.GlobalSchema.NumUint = p.UnpackUint64(false)
	a.GlobalSchema.NumByteSlice = p.UnpackUint64(false)
	a.LocalSchema.NumUint = p.UnpackUint64(false)
	a.LocalSchema.NumByteSlice = p.UnpackUint64(false)
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptValue, err)
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: %w", ErrCorruptValue, codec.ErrExtraBytes)
	}
	if a.Status != program.StatusActive && a.Status != program.StatusDeleted {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, a.Status)
	}
	return &a, nil
}

func NextAppIDKey() []byte {
	return keys.EncodeChunks([]byte{nextAppIDPrefix}, NextAppIDChunks)
}

// [appPrefix] + [appID]
func AppKey(appID uint64) []byte {
	k := make([]byte, 0, consts.ByteLen+consts.Uint64Len+consts.Uint16Len)
	k = append(k, appPrefix)
	k = binary.BigEndian.AppendUint64(k, appID)
	return keys.EncodeChunks(k, AppChunks)
}

// [globalPrefix] + [appID] + [name]
func GlobalKey(appID uint64, name string) []byte {
	k := make([]byte, 0, consts.ByteLen+consts.Uint64Len+len(name)+consts.Uint16Len)
	k = append(k, globalPrefix)
	k = binary.BigEndian.AppendUint64(k, appID)
	k = append(k, name...)
	return keys.EncodeChunks(k, GlobalChunks)
}

// GlobalKeys returns the keys of every global value the program may write.
func GlobalKeys(appID uint64) [][]byte {
	return [][]byte{
		GlobalKey(appID, consts.OwnerKey),
		GlobalKey(appID, consts.CounterKey),
	}
}

// [localPrefix] + [appID] + [address]
func LocalKey(appID uint64, addr codec.Address) []byte {
	k := make([]byte, 0, consts.ByteLen+consts.Uint64Len+codec.AddressLen+consts.Uint16Len)
	k = append(k, localPrefix)
	k = binary.BigEndian.AppendUint64(k, appID)
	k = append(k, addr[:]...)
	return keys.EncodeChunks(k, LocalChunks)
}

// [resultPrefix] + [txID]
func ResultKey(txID ids.ID) []byte {
	k := make([]byte, 0, consts.ByteLen+ids.IDLen+consts.Uint16Len)
	k = append(k, resultPrefix)
	k = append(k, txID[:]...)
	return keys.EncodeChunks(k, ResultChunks)
}

// GetNextAppID returns the ID the next created application will receive.
func GetNextAppID(ctx context.Context, im state.Immutable) (uint64, error) {
	v, err := im.GetValue(ctx, NextAppIDKey())
	if errors.Is(err, database.ErrNotFound) {
		return FirstAppID, nil
	}
	if err != nil {
		return 0, err
	}
	return database.ParseUInt64(v)
}

func SetNextAppID(ctx context.Context, mu state.Mutable, id uint64) error {
	return mu.Insert(ctx, NextAppIDKey(), database.PackUInt64(id))
}

// GetApp returns the record of [appID] and whether it exists.
func GetApp(ctx context.Context, im state.Immutable, appID uint64) (*App, bool, error) {
	v, err := im.GetValue(ctx, AppKey(appID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	app, err := UnmarshalApp(v)
	if err != nil {
		return nil, false, err
	}
	return app, true, nil
}

func SetApp(ctx context.Context, mu state.Mutable, appID uint64, app *App) error {
	return mu.Insert(ctx, AppKey(appID), app.Marshal())
}

// GetGlobalState loads the program state of [appID]. An application that was
// never created is [program.StatusUninitialized].
func GetGlobalState(ctx context.Context, im state.Immutable, appID uint64) (program.GlobalState, error) {
	app, exists, err := GetApp(ctx, im, appID)
	if err != nil {
		return program.GlobalState{}, err
	}
	if !exists {
		return program.GlobalState{}, nil
	}
	if app.Status == program.StatusDeleted {
		return program.GlobalState{Status: program.StatusDeleted}, nil
	}

	values := make(map[string]program.Value, 2)
	for _, name := range []string{consts.OwnerKey, consts.CounterKey} {
		v, err := im.GetValue(ctx, GlobalKey(appID, name))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return program.GlobalState{}, err
		}
		value, err := UnmarshalValue(v)
		if err != nil {
			return program.GlobalState{}, err
		}
		values[name] = value
	}
	return program.FromValues(values)
}

// ApplyDelta writes [delta] to the global values of [appID].
func ApplyDelta(ctx context.Context, mu state.Mutable, appID uint64, delta program.StateDelta) error {
	for _, d := range delta {
		k := GlobalKey(appID, d.Key)
		var err error
		switch d.Action {
		case program.SetUintAction:
			err = mu.Insert(ctx, k, MarshalValue(program.Value{Type: program.UintType, Uint: d.Uint}))
		case program.SetBytesAction:
			err = mu.Insert(ctx, k, MarshalValue(program.Value{Type: program.BytesType, Bytes: d.Bytes}))
		case program.DeleteAction:
			err = mu.Remove(ctx, k)
		default:
			err = fmt.Errorf("%w: unknown action %d", ErrCorruptValue, d.Action)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func MarshalValue(v program.Value) []byte {
	if v.Type == program.UintType {
		b := make([]byte, 0, uintValueLen)
		b = append(b, byte(program.UintType))
		return binary.BigEndian.AppendUint64(b, v.Uint)
	}
	b := make([]byte, 0, consts.ByteLen+len(v.Bytes))
	b = append(b, byte(program.BytesType))
	return append(b, v.Bytes...)
}

func UnmarshalValue(b []byte) (program.Value, error) {
	if len(b) == 0 {
		return program.Value{}, fmt.Errorf("%w: empty value", ErrCorruptValue)
	}
	switch program.ValueType(b[0]) {
	case program.UintType:
		if len(b) != uintValueLen {
			return program.Value{}, fmt.Errorf("%w: uint value is %d bytes", ErrCorruptValue, len(b))
		}
		return program.Value{Type: program.UintType, Uint: binary.BigEndian.Uint64(b[1:])}, nil
	case program.BytesType:
		return program.Value{Type: program.BytesType, Bytes: b[1:]}, nil
	default:
		return program.Value{}, fmt.Errorf("%w: type %d", ErrCorruptValue, b[0])
	}
}

// IsOptedIn reports whether [addr] holds local state for [appID].
func IsOptedIn(ctx context.Context, im state.Immutable, appID uint64, addr codec.Address) (bool, error) {
	_, err := im.GetValue(ctx, LocalKey(appID, addr))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func SetOptedIn(ctx context.Context, mu state.Mutable, appID uint64, addr codec.Address) error {
	return mu.Insert(ctx, LocalKey(appID, addr), optedIn)
}

func RemoveOptedIn(ctx context.Context, mu state.Mutable, appID uint64, addr codec.Address) error {
	return mu.Remove(ctx, LocalKey(appID, addr))
}

// GetResult returns the encoded result stored for [txID].
func GetResult(ctx context.Context, im state.Immutable, txID ids.ID) ([]byte, bool, error) {
	v, err := im.GetValue(ctx, ResultKey(txID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func PutResult(ctx context.Context, mu state.Mutable, txID ids.ID, result []byte) error {
	return mu.Insert(ctx, ResultKey(txID), result)
}

// ReadScope fetches the current value of every key in [scope] that exists in
// [db].
func ReadScope(db database.KeyValueReader, scope state.Keys) (map[string][]byte, error) {
	values := make(map[string][]byte, len(scope))
	for k := range scope {
		v, err := db.Get([]byte(k))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		values[k] = v
	}
	return values, nil
}
