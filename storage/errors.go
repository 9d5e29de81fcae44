// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrCorruptValue  = errors.New("corrupt value")
	ErrInvalidStatus = errors.New("invalid application status")
)
