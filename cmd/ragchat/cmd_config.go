package main

import (
	"fmt"
	"os"

	"ragchat/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

// configCmd groups configuration helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the ragchat configuration file",
	// Overrides the root hook so a broken file can still be replaced.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !forceInit {
			return usageErr(fmt.Errorf("%s already exists (use --force to overwrite)", configPath))
		}
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return failureErr(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return usageErr(err)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return failureErr(fmt.Errorf("failed to marshal config: %w", err))
		}
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return failureErr(err)
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
