package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/archgate/internal/cli/config"
	clitest "github.com/leapstack-labs/archgate/internal/cli/testutil"
	"github.com/leapstack-labs/archgate/internal/testutil"
)

// setupProject creates the test project and makes it the working directory.
func setupProject(t *testing.T) string {
	t.Helper()
	dir := clitest.SetupTestProject(t)
	clitest.Chdir(t, dir)
	return dir
}

// runCommand executes cmd with the project config loaded from the working
// directory. mutate, when set, adjusts the config before the command runs.
func runCommand(t *testing.T, cmd *cobra.Command, mode string, mutate func(*config.Config), args ...string) (string, error) {
	t.Helper()

	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	cfg.OutputFormat = mode
	if mutate != nil {
		mutate(cfg)
	}

	ctx := config.WithConfig(context.Background(), cfg)
	ctx = config.WithLogger(ctx, testutil.NewTestLogger(t))

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{}, args...))
	err = cmd.ExecuteContext(ctx)
	return buf.String(), err
}

func writePolicy(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policy.yaml"), []byte(content), 0o600))
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewCheckCommand(), "check [root...]", []string{"watch", "no-record"}},
		{NewExplainCommand(), "explain <root>", []string{"sources"}},
		{NewLayersCommand(), "layers", []string{"focus"}},
		{NewLintCommand(), "lint [policy]", []string{"severity"}},
		{NewSnapshotCommand(), "snapshot", nil},
		{NewHistoryCommand(), "history [run-id]", []string{"limit", "prune"}},
		{NewInitCommand(), "init [directory]", []string{"force", "example"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestSnapshotCommand_HasListSubcommand(t *testing.T) {
	cmd := NewSnapshotCommand()
	sub, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)
	assert.Equal(t, "list", sub.Name())
}
