// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"os"

	"fjacquet/divledger/internal/config"
	"fjacquet/divledger/internal/container"
	"fjacquet/divledger/internal/logging"
	"fjacquet/divledger/internal/validation"

	"github.com/spf13/cobra"
)

// SkipContainer is the annotation a command sets when it must run without an
// initialized data directory.
const SkipContainer = "divledger/skip-container"

type containerKey struct{}

// Flags holds the persistent flags shared by every command.
type Flags struct {
	ConfigFile string
	DataDir    string
	LogLevel   string
	LogFormat  string
}

// Cmd is the root command
var Cmd = NewCommand()

// NewCommand builds a root command with its persistent flags. Subcommands are
// added by the caller.
func NewCommand() *cobra.Command {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:   "divledger",
		Short: "A file-backed ledger of division budgets, credits and debits.",
		Long: `divledger records credit and debit transactions against named divisions,
refuses validated debits that would overdraw a division, and reports balances,
summaries and timelines. Data lives in two CSV files and a receipts folder.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[SkipContainer] == "true" {
				return nil
			}
			return initialize(cmd, flags)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c, ok := lookup(cmd); ok {
				return c.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Config file (default: ./config.yaml, .divledger/ or $HOME/.divledger/)")
	cmd.PersistentFlags().StringVarP(&flags.DataDir, "data-dir", "d", "", "Directory holding transactions.csv, divisions.csv and receipts")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", "", "Log format (text, json)")
	return cmd
}

// LoadConfig reads configuration the way every command sees it: .env, then
// viper defaults, file and environment, then command-line overrides.
func LoadConfig(flags *Flags) (*config.Config, error) {
	config.LoadEnv()

	cfg, err := config.InitializeConfig(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if flags.DataDir != "" {
		cfg.Data.Directory = flags.DataDir
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initialize(cmd *cobra.Command, flags *Flags) error {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return err
	}

	// Logs go to stderr so command output on stdout stays machine-readable.
	logger := logging.NewLogrusAdapterWithOutput(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if flags.ConfigFile != "" {
		if info, err := os.Stat(flags.ConfigFile); err == nil {
			if err := validation.IsValidFilePermissions(info.Mode().Perm()); err != nil {
				logger.Warn("Config file is readable by other users", logging.F(logging.FieldFile, flags.ConfigFile), logging.F(logging.FieldError, err.Error()))
			}
		}
	}
	c, err := container.NewContainerWithLogger(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, containerKey{}, c))
	return nil
}

func lookup(cmd *cobra.Command) (*container.Container, bool) {
	if cmd.Context() == nil {
		return nil, false
	}
	c, ok := cmd.Context().Value(containerKey{}).(*container.Container)
	return c, ok
}

// GetContainer returns the container built for the running command.
func GetContainer(cmd *cobra.Command) (*container.Container, error) {
	c, ok := lookup(cmd)
	if !ok {
		return nil, fmt.Errorf("application not initialized")
	}
	return c, nil
}

// FlagsOf returns the persistent flag values of cmd's root command.
func FlagsOf(cmd *cobra.Command) *Flags {
	f := cmd.Root().PersistentFlags()
	get := func(name string) string {
		v, _ := f.GetString(name)
		return v
	}
	return &Flags{
		ConfigFile: get("config"),
		DataDir:    get("data-dir"),
		LogLevel:   get("log-level"),
		LogFormat:  get("log-format"),
	}
}
