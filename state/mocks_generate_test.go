// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

//go:generate go run go.uber.org/mock/mockgen -package=statemock -destination=statemock/mutable.go -mock_names=Mutable=MockMutable . Mutable
