// Package cmd - config commands
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"price-list/internal/config"
	"price-list/internal/errors"
)

var configForce bool

// configCmd groups the config subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the price-list config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long: `Write the default settings to the config file given by --config
(default $HOME/.price-list.json). An existing file is kept unless --force
is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after the config file, PRICELIST_* variables
and command line flags have been applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(config.Get(), "", "  ")
		if err != nil {
			return errors.Internal("failed to encode config", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	if _, err := os.Stat(path); err == nil && !configForce {
		return errors.Newf(errors.TypeInput, "config file %s already exists, use --force to overwrite", path)
	}

	if err := config.Default().Save(path); err != nil {
		return errors.Wrapf(errors.TypeConfig, err, "failed to write config file %s", path)
	}
	newWriter(cmd).Success("wrote %s", path)
	return nil
}
