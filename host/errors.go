// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import "errors"

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrTooManyArgs      = errors.New("too many arguments")
	ErrArgsTooLarge     = errors.New("argument too large")
	ErrDuplicateTx      = errors.New("duplicate transaction")
	ErrUnknownApp       = errors.New("unknown application")
	ErrResultNotFound   = errors.New("result not found")
	ErrMissingAuth      = errors.New("transaction is not signed")

	// Local state rejections are reported in [Result.Error].
	ErrAlreadyOptedIn = errors.New("account already opted in")
	ErrNotOptedIn     = errors.New("account not opted in")
)
