// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/utils"
)

const (
	defaultPrefix = 0x0
	keyPrefix     = 0x1

	defaultKeyKey   = "key"
	defaultAppKey   = "app"
	keyCountKey     = "keys"
	nextNonceKey    = "nonce"
	defaultKeyValue = -1
)

func (h *Handler) StoreDefault(key string, value []byte) error {
	k := make([]byte, 1+len(key))
	k[0] = defaultPrefix
	copy(k[1:], []byte(key))
	return h.db.Put(k, value)
}

func (h *Handler) GetDefault(key string) ([]byte, error) {
	k := make([]byte, 1+len(key))
	k[0] = defaultPrefix
	copy(k[1:], []byte(key))
	v, err := h.db.Get(k)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h *Handler) getDefaultUint64(key string) (uint64, bool, error) {
	v, err := h.GetDefault(key)
	if err != nil || v == nil {
		return 0, false, err
	}
	n, err := database.ParseUInt64(v)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func keyIndexKey(index uint32) []byte {
	k := make([]byte, 1+consts.IntLen)
	k[0] = keyPrefix
	binary.BigEndian.PutUint32(k[1:], index)
	return k
}

// StoreKey appends [pk] to the key list and returns its index.
func (h *Handler) StoreKey(pk *auth.PrivateKey) (int, error) {
	count, _, err := h.getDefaultUint64(keyCountKey)
	if err != nil {
		return defaultKeyValue, err
	}
	if count >= math.MaxUint32 {
		return defaultKeyValue, fmt.Errorf("%w: too many keys", ErrNoKeys)
	}
	index := uint32(count)
	if err := h.db.Put(keyIndexKey(index), pk.Bytes); err != nil {
		return defaultKeyValue, err
	}
	if err := h.StoreDefault(keyCountKey, database.PackUInt64(count+1)); err != nil {
		return defaultKeyValue, err
	}
	return int(index), nil
}

func (h *Handler) GetKeys() ([]*auth.PrivateKey, error) {
	count, _, err := h.getDefaultUint64(keyCountKey)
	if err != nil {
		return nil, err
	}
	factory := auth.NewED25519PrivateKeyFactory()
	keys := make([]*auth.PrivateKey, 0, count)
	for i := uint64(0); i < count; i++ {
		v, err := h.db.Get(keyIndexKey(uint32(i)))
		if err != nil {
			return nil, err
		}
		pk, err := factory.LoadPrivateKey(v)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pk)
	}
	return keys, nil
}

func (h *Handler) StoreDefaultKey(index int) error {
	return h.StoreDefault(defaultKeyKey, database.PackUInt64(uint64(index)))
}

// GetDefaultKey returns the selected key and its index.
func (h *Handler) GetDefaultKey(log bool) (*auth.PrivateKey, int, error) {
	index, ok, err := h.getDefaultUint64(defaultKeyKey)
	if err != nil {
		return nil, defaultKeyValue, err
	}
	if !ok {
		return nil, defaultKeyValue, ErrNoKeys
	}
	v, err := h.db.Get(keyIndexKey(uint32(index)))
	if err != nil {
		return nil, defaultKeyValue, err
	}
	pk, err := auth.NewED25519PrivateKeyFactory().LoadPrivateKey(v)
	if err != nil {
		return nil, defaultKeyValue, err
	}
	if log {
		utils.Outf("{{yellow}}address:{{/}} %s\n", pk.Address)
	}
	return pk, int(index), nil
}

func (h *Handler) StoreDefaultApp(appID uint64) error {
	return h.StoreDefault(defaultAppKey, database.PackUInt64(appID))
}

func (h *Handler) GetDefaultApp() (uint64, error) {
	appID, ok, err := h.getDefaultUint64(defaultAppKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNoApp
	}
	return appID, nil
}

// nextNonce returns a nonce never handed out before by this data directory.
func (h *Handler) nextNonce() (uint64, error) {
	nonce, _, err := h.getDefaultUint64(nextNonceKey)
	if err != nil {
		return 0, err
	}
	if err := h.StoreDefault(nextNonceKey, database.PackUInt64(nonce+1)); err != nil {
		return 0, err
	}
	return nonce, nil
}
