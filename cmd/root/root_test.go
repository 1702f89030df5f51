package root_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/divledger/cmd/root"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Metadata(t *testing.T) {
	cmd := root.NewCommand()
	assert.Equal(t, "divledger", cmd.Use)
	assert.Contains(t, cmd.Short, "ledger")
	assert.NotNil(t, cmd.PersistentPreRunE)
	assert.NotNil(t, cmd.PersistentPostRunE)
	assert.True(t, cmd.SilenceUsage)
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := root.NewCommand()

	dataDir := cmd.PersistentFlags().Lookup("data-dir")
	require.NotNil(t, dataDir)
	assert.Equal(t, "d", dataDir.Shorthand)

	for _, name := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

// recorder returns a subcommand that records what it saw of the container.
func recorder(initialized *bool, annotations map[string]string) *cobra.Command {
	return &cobra.Command{
		Use:         "record",
		Annotations: annotations,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			*initialized = err == nil && c != nil
			return nil
		},
	}
}

func TestRootCommand_InitializesContainer(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	var initialized bool

	cmd := root.NewCommand()
	cmd.AddCommand(recorder(&initialized, nil))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--data-dir", dataDir, "--log-level", "error", "record"})

	require.NoError(t, cmd.Execute())
	assert.True(t, initialized)
	assert.FileExists(t, filepath.Join(dataDir, "transactions.csv"))
	assert.FileExists(t, filepath.Join(dataDir, "divisions.csv"))
}

func TestRootCommand_SkipContainer(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	initialized := true

	cmd := root.NewCommand()
	cmd.AddCommand(recorder(&initialized, map[string]string{root.SkipContainer: "true"}))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--data-dir", dataDir, "record"})

	require.NoError(t, cmd.Execute())
	assert.False(t, initialized)
	assert.NoDirExists(t, dataDir)
}

func TestRootCommand_WarnsOnReadableConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "divledger.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: info\n"), 0600))
	require.NoError(t, os.Chmod(cfgPath, 0644))
	var initialized bool

	cmd := root.NewCommand()
	cmd.AddCommand(recorder(&initialized, nil))
	var errOut bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--config", cfgPath, "--data-dir", filepath.Join(dir, "data"), "record"})

	require.NoError(t, cmd.Execute())
	assert.True(t, initialized)
	assert.Contains(t, errOut.String(), "Config file is readable by other users")
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	var initialized bool
	cmd := root.NewCommand()
	cmd.AddCommand(recorder(&initialized, nil))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--data-dir", t.TempDir(), "--log-level", "loud", "record"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
	assert.False(t, initialized)
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	cfg, err := root.LoadConfig(&root.Flags{DataDir: "/srv/ledger", LogLevel: "debug", LogFormat: "json"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/ledger", cfg.Data.Directory)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestGetContainer_NotInitialized(t *testing.T) {
	_, err := root.GetContainer(&cobra.Command{})
	assert.EqualError(t, err, "application not initialized")
}

func TestFlagsOf(t *testing.T) {
	cmd := root.NewCommand()
	child := &cobra.Command{
		Use:         "child",
		Annotations: map[string]string{root.SkipContainer: "true"},
		Run:         func(*cobra.Command, []string) {},
	}
	cmd.AddCommand(child)
	cmd.SetArgs([]string{"-d", "/tmp/x", "--log-format", "json", "child"})
	require.NoError(t, cmd.Execute())

	flags := root.FlagsOf(child)
	assert.Equal(t, "/tmp/x", flags.DataDir)
	assert.Equal(t, "json", flags.LogFormat)
	assert.Empty(t, flags.ConfigFile)
}
