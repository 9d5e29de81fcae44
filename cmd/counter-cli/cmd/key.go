// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use: "key",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var genKeyCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and select a new ed25519 key",
	RunE: func(*cobra.Command, []string) error {
		_, err := handler.GenerateKey()
		return err
	},
}

var listKeyCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored keys",
	RunE: func(*cobra.Command, []string) error {
		return handler.ListKeys()
	},
}

var setKeyCmd = &cobra.Command{
	Use:   "set",
	Short: "Select the key used to sign invocations",
	RunE: func(*cobra.Command, []string) error {
		return handler.SetKey()
	},
}

func init() {
	keyCmd.AddCommand(
		genKeyCmd,
		listKeyCmd,
		setKeyCmd,
	)
}
