// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import "errors"

var (
	ErrNoKeys              = errors.New("no available keys")
	ErrNoApp               = errors.New("no application selected")
	ErrUnknownCommand      = errors.New("unknown command")
	ErrInvalidScriptLine   = errors.New("invalid script line")
	ErrExpectationFailed   = errors.New("expectation failed")
	ErrTransactionRejected = errors.New("transaction rejected")
)
