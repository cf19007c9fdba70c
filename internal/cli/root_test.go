package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/archgate/internal/cli/output"
	clitest "github.com/leapstack-labs/archgate/internal/cli/testutil"
)

// execute runs the root command and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	stdout := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRootCmd_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	for _, name := range []string{"check", "explain", "layers", "lint", "snapshot", "history", "init", "version", "completion"} {
		assert.Contains(t, out, name)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"config", "policy", "provider", "dir", "manifest", "include-tests", "snapshot", "state", "concurrency", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag %q should exist", name)
	}
}

func TestRootCmd_Version(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "archgate "+Version)
}

func TestRootCmd_CheckWithConfigFlag(t *testing.T) {
	dir := clitest.SetupTestProject(t)

	out, err := execute(t, "--config", filepath.Join(dir, "archgate.yaml"), "-o", "json", "check", "--no-record")
	require.NoError(t, err)

	var decoded output.CheckOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.True(t, decoded.Passed)
	assert.Equal(t, 3, decoded.Summary.Total)
}

func TestRootCmd_FlagsOverrideConfig(t *testing.T) {
	dir := clitest.SetupTestProject(t)
	cfgPath := filepath.Join(dir, "archgate.yaml")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "unknown provider",
			args:    []string{"--config", cfgPath, "--provider", "maven", "check"},
			wantErr: `unknown provider type "maven"`,
		},
		{
			name:    "unknown output format",
			args:    []string{"--config", cfgPath, "-o", "html", "check"},
			wantErr: `unknown output format "html"`,
		},
		{
			name:    "missing policy",
			args:    []string{"--config", cfgPath, "--policy", filepath.Join(dir, "nope.yaml"), "check"},
			wantErr: "policy file does not exist",
		},
		{
			name:    "empty artifact dir",
			args:    []string{"--config", cfgPath, "--dir", t.TempDir(), "-o", "markdown", "check", "--no-record"},
			wantErr: "3 of 3 roots failed conformance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "archgate")
		})
	}
}
