package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/archgate/internal/cli/config"
	"github.com/leapstack-labs/archgate/internal/state"
	"github.com/leapstack-labs/archgate/pkg/core"
)

func useSnapshot(c *config.Config) {
	c.Provider.Type = config.ProviderSnapshot
}

func TestSnapshot_CheckWithoutArtifacts(t *testing.T) {
	dir := setupProject(t)

	out, err := runCommand(t, NewSnapshotCommand(), "markdown", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "saved (8 edges from 3 roots)")

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "artifacts")))

	out, err = runCommand(t, NewCheckCommand(), "markdown", useSnapshot, "--no-record")
	require.NoError(t, err)
	assert.Contains(t, out, "3 roots conform")

	out, err = runCommand(t, NewSnapshotCommand(), "json", nil, "list")
	require.NoError(t, err)
	var snaps []state.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snaps))
	require.Len(t, snaps, 1)
	assert.Equal(t, 8, snaps[0].EdgeCount)
	assert.Equal(t, ".", snaps[0].Delimiter)
	assert.Equal(t, config.ProviderManifest, snaps[0].Provider)
}

func TestSnapshot_NoSnapshotStored(t *testing.T) {
	setupProject(t)

	_, err := runCommand(t, NewCheckCommand(), "markdown", useSnapshot, "--no-record")
	require.Error(t, err)
	var ee *core.ExtractionError
	assert.ErrorAs(t, err, &ee)
}

func TestSnapshot_FromSnapshotProvider(t *testing.T) {
	setupProject(t)

	_, err := runCommand(t, NewSnapshotCommand(), "markdown", useSnapshot)
	var cfgErr *core.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSnapshot_ExtractionFailureStoresNothing(t *testing.T) {
	dir := setupProject(t)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "artifacts", "com", "acme", "core")))

	_, err := runCommand(t, NewSnapshotCommand(), "markdown", nil)
	var ee *core.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "com.acme.core", ee.Root)

	out, err := runCommand(t, NewSnapshotCommand(), "markdown", nil, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no snapshots")
}
