// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"fmt"

	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/cli/prompt"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/utils"
)

// GenerateKey creates a new ed25519 key and selects it.
func (h *Handler) GenerateKey() (*auth.PrivateKey, error) {
	pk, err := auth.NewED25519PrivateKeyFactory().GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	index, err := h.StoreKey(pk)
	if err != nil {
		return nil, err
	}
	if err := h.StoreDefaultKey(index); err != nil {
		return nil, err
	}
	utils.Outf(
		"{{green}}created key %d:{{/}} %s\n",
		index,
		codec.MustAddressBech32(consts.HRP, pk.Address),
	)
	return pk, nil
}

func (h *Handler) ListKeys() error {
	keys, err := h.GetKeys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		utils.Outf("{{red}}no stored keys{{/}}\n")
		return nil
	}
	_, selected, err := h.GetDefaultKey(false)
	if err != nil {
		return err
	}
	utils.Outf("{{cyan}}stored keys:{{/}} %d\n", len(keys))
	for i, key := range keys {
		marker := " "
		if i == selected {
			marker = "*"
		}
		utils.Outf(
			"%s%d) {{cyan}}address:{{/}} %s\n",
			marker,
			i,
			codec.MustAddressBech32(consts.HRP, key.Address),
		)
	}
	return nil
}

// SetKey prompts for the key to sign with.
func (h *Handler) SetKey() error {
	keys, err := h.GetKeys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		utils.Outf("{{red}}no stored keys{{/}}\n")
		return nil
	}
	if err := h.ListKeys(); err != nil {
		return err
	}
	keyIndex, err := prompt.Choice("set default key", len(keys))
	if err != nil {
		return err
	}
	return h.UseKey(keyIndex)
}

// UseKey selects the key stored at [index].
func (h *Handler) UseKey(index int) error {
	keys, err := h.GetKeys()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(keys) {
		return fmt.Errorf("%w: key %d of %d", prompt.ErrIndexOutOfRange, index, len(keys))
	}
	return h.StoreDefaultKey(index)
}
