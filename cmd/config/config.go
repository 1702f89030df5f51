// Package config handles the config commands
package config

import (
	"fmt"

	"fjacquet/divledger/cmd/root"
	appconfig "fjacquet/divledger/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Cmd represents the config command
var Cmd = NewCommand()

// NewCommand builds the config command tree. Its subcommands do not touch the
// data directory.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the configuration file",
	}
	cmd.AddCommand(newInitCmd(), newShowCmd())
	return cmd
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "init [PATH]",
		Short:       "Write a configuration file with the default settings",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{root.SkipContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := appconfig.WriteConfigFile(appconfig.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{root.SkipContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.LoadConfig(root.FlagsOf(cmd))
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			if err := enc.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# admin routes enabled: %t\n", cfg.AdminEnabled())
			return nil
		},
	}
}
