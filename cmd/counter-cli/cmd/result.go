// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/cli/prompt"
)

var resultCmd = &cobra.Command{
	Use:   "result [txID]",
	Short: "Show the stored outcome of a transaction",
	PreRunE: func(_ *cobra.Command, args []string) error {
		if len(args) > 1 {
			return ErrInvalidArgs
		}
		return nil
	},
	RunE: func(_ *cobra.Command, args []string) error {
		var (
			txID ids.ID
			err  error
		)
		if len(args) == 1 {
			txID, err = ids.FromString(args[0])
		} else {
			txID, err = prompt.ID("txID")
		}
		if err != nil {
			return err
		}
		_, err = handler.Result(context.Background(), txID)
		return err
	},
}
