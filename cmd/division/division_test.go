package division_test

import (
	"bytes"
	"testing"

	"fjacquet/divledger/cmd/division"
	"fjacquet/divledger/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := root.NewCommand()
	cmd.AddCommand(division.NewCommand())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--data-dir", dataDir, "--log-level", "error", "division"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestDivisionCommand_Lifecycle(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "add", "Events", "--balance", "200")
	require.NoError(t, err)
	assert.Equal(t, "Division \"Events\" created with AED 200.00\n", out)

	out, err = run(t, dir, "balance", "Events")
	require.NoError(t, err)
	assert.Equal(t, "Events: AED 200.00\n", out)

	_, err = run(t, dir, "update", "Events", "-b", "1500")
	require.NoError(t, err)

	out, err = run(t, dir, "balance", "Events")
	require.NoError(t, err)
	assert.Equal(t, "Events: AED 1,500.00\n", out)

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "DIVISION")
	assert.Contains(t, out, "Events")
	assert.Contains(t, out, "1500.00")

	out, err = run(t, dir, "delete", "Events")
	require.NoError(t, err)
	assert.Equal(t, "Division \"Events\" deleted\n", out)

	_, err = run(t, dir, "balance", "Events")
	require.Error(t, err)
}

func TestDivisionCommand_AddDefaultsToZero(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "add", "Trips")
	require.NoError(t, err)

	out, err := run(t, dir, "balance", "Trips")
	require.NoError(t, err)
	assert.Equal(t, "Trips: AED 0.00\n", out)
}

func TestDivisionCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "add", "Events", "--balance", "200")
	require.NoError(t, err)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"duplicate", []string{"add", "Events"}, "already exists"},
		{"negative balance", []string{"add", "Music", "--balance=-5"}, "starting_balance"},
		{"bad amount", []string{"add", "Music", "--balance", "lots"}, "invalid amount"},
		{"update unknown", []string{"update", "Music", "--balance", "5"}, "Music"},
		{"update needs balance", []string{"update", "Events"}, "balance"},
		{"delete unknown", []string{"delete", "Music"}, "division not found: 'Music'"},
		{"stats unknown", []string{"stats", "Music"}, "Music"},
		{"missing name", []string{"add"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, dir, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDivisionCommand_Stats(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "add", "Events", "--balance", "1000")
	require.NoError(t, err)

	out, err := run(t, dir, "stats", "Events")
	require.NoError(t, err)
	assert.Contains(t, out, "Division:")
	assert.Contains(t, out, "AED 1,000.00")
	assert.Contains(t, out, "Transactions:")
	assert.Contains(t, out, "Average expense:")
}
