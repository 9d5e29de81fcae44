// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/cli"
	"github.com/ava-labs/countervm/config"
	"github.com/ava-labs/countervm/utils"
)

var (
	handler *cli.Handler

	configFile string
	dataDir    string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:        "counter-cli",
		Short:      "Ledger counter CLI",
		SuggestFor: []string{"counter-cli", "countercli"},
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.AddCommand(
		keyCmd,
		appCmd,
		resultCmd,
		scriptCmd,
	)
	rootCmd.PersistentFlags().StringVar(
		&configFile,
		"config",
		"",
		"path to a json or yaml config file",
	)
	rootCmd.PersistentFlags().StringVar(
		&dataDir,
		"data-dir",
		"",
		"overrides the configured data directory (will create it missing)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"",
		"overrides the configured log level",
	)
	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		utils.Outf("{{yellow}}data dir:{{/}} %s\n", c.GetDataDir())
		h, err := cli.New(c, cli.NewLogger(c))
		if err != nil {
			return err
		}
		handler = h
		return nil
	}
	rootCmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		if handler == nil {
			return nil
		}
		return handler.Close()
	}
	rootCmd.SilenceErrors = true
}

func loadConfig() (*config.Config, error) {
	c, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if len(dataDir) > 0 {
		c.DataDir = dataDir
	}
	if len(logLevel) > 0 {
		c.LogLevel = logLevel
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return c, nil
}

func Execute() error {
	return rootCmd.Execute()
}
