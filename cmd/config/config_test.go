package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	configcmd "fjacquet/divledger/cmd/config"
	"fjacquet/divledger/cmd/root"
	appconfig "fjacquet/divledger/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := root.NewCommand()
	cmd.AddCommand(configcmd.NewCommand())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "divledger.yaml")
	dataDir := filepath.Join(dir, "data")

	out, err := run(t, "--data-dir", dataDir, "config", "init", path)
	require.NoError(t, err)
	assert.Equal(t, "Configuration written to "+path+"\n", out)
	assert.NoDirExists(t, dataDir)

	cfg, err := appconfig.InitializeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, appconfig.Default().Server.Addr, cfg.Server.Addr)

	_, err = run(t, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")
}

func TestConfigShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "divledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: 127.0.0.1:9090\n"), 0600))

	out, err := run(t, "--config", path, "--data-dir", "/srv/ledger", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "addr: 127.0.0.1:9090")
	assert.Contains(t, out, "directory: /srv/ledger")
	assert.Contains(t, out, "# admin routes enabled: false")
	assert.NotContains(t, out, "secret")
	assert.NoDirExists(t, "/srv/ledger")
}
