// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import "errors"

var (
	ErrUnauthorized      = errors.New("caller is not the owner")
	ErrUnknownOperation  = errors.New("unknown operation")
	ErrMalformedArgument = errors.New("malformed argument")
	ErrUninitialized     = errors.New("application is not initialized")
	ErrAlreadyCreated    = errors.New("application already created")
	ErrOverflow          = errors.New("counter overflow")
	ErrInvalidKind       = errors.New("invalid invocation kind")
	ErrSchemaViolation   = errors.New("state exceeds schema")
	ErrInvalidValueType  = errors.New("invalid value type")
)
