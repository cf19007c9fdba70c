package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/archgate/internal/cli/output"
	clitest "github.com/leapstack-labs/archgate/internal/cli/testutil"
)

func layerRoots(out output.LayersOutput) [][]string {
	var roots [][]string
	for _, layer := range out.Layers {
		var names []string
		for _, n := range layer {
			names = append(names, n.Root)
		}
		roots = append(roots, names)
	}
	return roots
}

func TestLayers_JSON(t *testing.T) {
	setupProject(t)

	out, err := runCommand(t, NewLayersCommand(), "json", nil)
	require.NoError(t, err)

	var decoded output.LayersOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, [][]string{
		{"com.acme.core"},
		{"com.acme.billing"},
		{"com.acme.reporting"},
	}, layerRoots(decoded))
	assert.Equal(t, 3, decoded.TotalRoots)
	assert.Equal(t, 3, decoded.TotalEdges)

	billing := decoded.Layers[1][0]
	assert.Equal(t, []string{"com.acme.core"}, billing.DependsOn)
	assert.Equal(t, []string{"com.acme.reporting"}, billing.UsedBy)
	assert.Equal(t, "invoice export predates the reporting split", billing.Note)
}

func TestLayers_Markdown(t *testing.T) {
	setupProject(t)

	out, err := runCommand(t, NewLayersCommand(), "markdown", nil)
	require.NoError(t, err)

	assert.Contains(t, out, "## Layer 0 (Foundations)")
	assert.Contains(t, out, "- com.acme.reporting\n  - depends on: com.acme.billing, com.acme.core")
	assert.Contains(t, out, "- **Foundations**: com.acme.core")
	clitest.AssertValidMarkdown(t, out)
}

func TestLayers_Focus(t *testing.T) {
	dir := setupProject(t)
	writePolicy(t, dir, `namespace:
  internal: [com.acme]
roots:
  com.acme.core: {}
  com.acme.billing:
    allowed: [com.acme.core]
  com.acme.search: {}
`)

	out, err := runCommand(t, NewLayersCommand(), "json", nil, "--focus", "com.acme.billing")
	require.NoError(t, err)

	var decoded output.LayersOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, [][]string{{"com.acme.core"}, {"com.acme.billing"}}, layerRoots(decoded))

	_, err = runCommand(t, NewLayersCommand(), "json", nil, "--focus", "com.acme.ghost")
	assert.Error(t, err)
}

func TestLayers_Cycle(t *testing.T) {
	dir := setupProject(t)
	writePolicy(t, dir, `namespace:
  internal: [com.acme]
roots:
  com.acme.core:
    allowed: [com.acme.billing]
  com.acme.billing:
    allowed: [com.acme.core]
`)

	out, err := runCommand(t, NewLayersCommand(), "markdown", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 cycle")
	assert.Contains(t, out, "com.acme.billing -> com.acme.core -> com.acme.billing")
}
