// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/archgate/internal/cli/output"
	"github.com/leapstack-labs/archgate/pkg/graph/manifest"
)

// ProjectConfig is the archgate.yaml written by SetupTestProject.
const ProjectConfig = `policy: policy.yaml
provider:
  type: manifest
  dir: artifacts
state_path: .archgate/state.db
concurrency: 2
`

// ProjectPolicy is the policy.yaml written by SetupTestProject.
// Every root conforms against the artifacts written alongside it.
const ProjectPolicy = `namespace:
  internal: [com.acme]
roots:
  com.acme.core:
    allowed: []
  com.acme.billing:
    allowed: [com.acme.core]
    tolerated: [com.acme.reporting.export]
    note: invoice export predates the reporting split
  com.acme.reporting:
    allowed: [com.acme.core, com.acme.billing]
`

// ProjectArtifacts maps each compiled package of the test project to its dependencies.
var ProjectArtifacts = map[string][]string{
	"com.acme.core.money":       {"java.math"},
	"com.acme.billing":          {"com.acme.billing.invoice"},
	"com.acme.billing.invoice":  {"com.acme.core.money", "com.acme.reporting.export", "org.yaml.snakeyaml"},
	"com.acme.reporting":        {"com.acme.billing.invoice", "com.acme.core"},
	"com.acme.reporting.export": {"com.acme.core.money"},
}

// SetupTestProject creates a temporary project with a config file, a policy
// and a manifest artifact tree under artifacts/.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "archgate.yaml"), []byte(ProjectConfig), 0600); err != nil {
		t.Fatalf("failed to create archgate.yaml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "policy.yaml"), []byte(ProjectPolicy), 0600); err != nil {
		t.Fatalf("failed to create policy.yaml: %v", err)
	}
	for pkg, deps := range ProjectArtifacts {
		WriteArtifact(t, tmpDir, pkg, deps...)
	}

	return tmpDir
}

// WriteArtifact writes (or replaces) the manifest of pkg in the project's artifact tree.
func WriteArtifact(t *testing.T, projectDir, pkg string, deps ...string) {
	t.Helper()
	if err := manifest.Write(filepath.Join(projectDir, "artifacts"), pkg, ".", deps); err != nil {
		t.Fatalf("failed to write manifest for %s: %v", pkg, err)
	}
}

// Chdir changes the working directory for the duration of the test.
func Chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change to %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
