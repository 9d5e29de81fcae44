// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/cli/prompt"
	"github.com/ava-labs/countervm/program"
)

var appCmd = &cobra.Command{
	Use: "app",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var createAppCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a counter application and select it",
	RunE: func(*cobra.Command, []string) error {
		_, err := handler.Create(context.Background())
		return err
	},
}

var addAppCmd = &cobra.Command{
	Use:   "add",
	Short: "Increment the selected counter",
	RunE: func(*cobra.Command, []string) error {
		_, err := handler.Add(context.Background())
		return err
	},
}

var minusAppCmd = &cobra.Command{
	Use:   "minus",
	Short: "Decrement the selected counter",
	RunE: func(*cobra.Command, []string) error {
		_, err := handler.Minus(context.Background())
		return err
	},
}

var setAppCmd = &cobra.Command{
	Use:   "set [value]",
	Short: "Set the selected counter",
	PreRunE: func(_ *cobra.Command, args []string) error {
		if len(args) > 1 {
			return ErrInvalidArgs
		}
		return nil
	},
	RunE: func(_ *cobra.Command, args []string) error {
		var (
			v   uint64
			err error
		)
		if len(args) == 1 {
			v, err = prompt.ParseUint64(args[0])
		} else {
			v, err = prompt.Uint64("value")
		}
		if err != nil {
			return err
		}
		_, err = handler.Set(context.Background(), v)
		return err
	},
}

var useAppCmd = &cobra.Command{
	Use:   "use [appID]",
	Short: "Select the application used by later invocations",
	PreRunE: func(_ *cobra.Command, args []string) error {
		if len(args) != 1 {
			return ErrInvalidArgs
		}
		return nil
	},
	RunE: func(_ *cobra.Command, args []string) error {
		appID, err := prompt.ParseUint64(args[0])
		if err != nil {
			return err
		}
		return handler.UseApp(context.Background(), appID)
	},
}

var showAppCmd = &cobra.Command{
	Use:   "show [appID]",
	Short: "Show application state",
	PreRunE: func(_ *cobra.Command, args []string) error {
		if len(args) > 1 {
			return ErrInvalidArgs
		}
		return nil
	},
	RunE: func(_ *cobra.Command, args []string) error {
		var appID uint64
		if len(args) == 1 {
			var err error
			appID, err = prompt.ParseUint64(args[0])
			if err != nil {
				return err
			}
		}
		_, err := handler.Show(context.Background(), appID)
		return err
	},
}

// invokeCmd builds a subcommand that submits [kind] without arguments.
func invokeCmd(use string, short string, kind program.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(*cobra.Command, []string) error {
			_, err := handler.Invoke(context.Background(), kind, nil)
			return err
		},
	}
}

func init() {
	appCmd.AddCommand(
		createAppCmd,
		addAppCmd,
		minusAppCmd,
		setAppCmd,
		invokeCmd("update", "Update the selected application", program.KindUpdate),
		invokeCmd("delete", "Delete the selected application", program.KindDelete),
		invokeCmd("optin", "Opt in to the selected application", program.KindOptIn),
		invokeCmd("closeout", "Close out of the selected application", program.KindCloseOut),
		invokeCmd("clear", "Clear local state for the selected application", program.KindClearState),
		showAppCmd,
		useAppCmd,
	)
}
