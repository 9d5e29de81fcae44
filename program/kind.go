// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"fmt"
	"strings"
)

// Kind is the lifecycle action an invocation performs. Values match the
// wire encoding and must not be reordered.
type Kind uint8

const (
	KindNoOp Kind = iota
	KindOptIn
	KindCloseOut
	KindClearState
	KindUpdate
	KindDelete
	KindCreate
)

var kindNames = map[Kind]string{
	KindNoOp:       "noop",
	KindOptIn:      "optin",
	KindCloseOut:   "closeout",
	KindClearState: "clearstate",
	KindUpdate:     "update",
	KindDelete:     "delete",
	KindCreate:     "create",
}

func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind returns the [Kind] named [s] (case insensitive).
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(s)
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
