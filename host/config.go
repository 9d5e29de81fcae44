// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/program"
)

type Config struct {
	// MaxArgs is the most arguments a single invocation may carry.
	MaxArgs int `json:"maxArgs" yaml:"maxArgs"`
	// MaxArgSize is the largest argument (in bytes) accepted.
	MaxArgSize int `json:"maxArgSize" yaml:"maxArgSize"`

	// VerifySignatures can be disabled for trusted, local-only hosts.
	VerifySignatures bool `json:"verifySignatures" yaml:"verifySignatures"`
	// VerifyParallelism bounds the goroutines used by [Host.SubmitBatch] to
	// check signatures.
	VerifyParallelism int `json:"verifyParallelism" yaml:"verifyParallelism"`

	GlobalSchema program.Schema `json:"globalSchema" yaml:"globalSchema"`
	LocalSchema  program.Schema `json:"localSchema"  yaml:"localSchema"`
}

func NewDefaultConfig() Config {
	return Config{
		MaxArgs:           16,
		MaxArgSize:        128,
		VerifySignatures:  true,
		VerifyParallelism: 4,
		GlobalSchema: program.Schema{
			NumUint:      consts.GlobalInts,
			NumByteSlice: consts.GlobalBytes,
		},
		LocalSchema: program.Schema{
			NumUint:      consts.LocalInts,
			NumByteSlice: consts.LocalBytes,
		},
	}
}
