package goimports

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/archgate/pkg/core"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func setupModule(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/shop\n\ngo 1.24\n")
	writeFile(t, filepath.Join(dir, "internal", "billing", "billing.go"), `package billing

import (
	"fmt"

	"example.com/shop/internal/billing/core"
	"example.com/shop/internal/reporting"
)

var _ = fmt.Sprint
var _ = core.X
var _ = reporting.Y
`)
	writeFile(t, filepath.Join(dir, "internal", "billing", "core", "core.go"), `package core

import "example.com/shop/internal/audit"

var X = audit.Z
`)
	writeFile(t, filepath.Join(dir, "internal", "billing", "billing_test.go"), `package billing

import "example.com/shop/internal/testkit"
`)
	writeFile(t, filepath.Join(dir, "internal", "billing", "testdata", "fixture.go"), `package fixture

import "example.com/shop/internal/ignored"
`)
	return dir
}

func TestProvider_EdgesUnder(t *testing.T) {
	p := New(setupModule(t))

	edges, err := p.EdgesUnder(context.Background(), "example.com/shop/internal/billing")
	require.NoError(t, err)
	assert.Equal(t, []core.Edge{
		{Source: "example.com/shop/internal/billing", Target: "example.com/shop/internal/billing/core"},
		{Source: "example.com/shop/internal/billing", Target: "example.com/shop/internal/reporting"},
		{Source: "example.com/shop/internal/billing", Target: "fmt"},
		{Source: "example.com/shop/internal/billing/core", Target: "example.com/shop/internal/audit"},
	}, edges)
}

func TestProvider_NestedModuleAndRawImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/shop\n\ngo 1.24\n")
	writeFile(t, filepath.Join(dir, "billing", "billing.go"), "package billing\n\nimport `example.com/shop/reporting`\n")
	writeFile(t, filepath.Join(dir, "reporting", "reporting.go"), "package reporting\n")
	writeFile(t, filepath.Join(dir, "tools", "go.mod"), "module example.com/tools\n\ngo 1.24\n")
	writeFile(t, filepath.Join(dir, "tools", "gen", "gen.go"), `package gen

import "example.com/shop/billing"
`)

	p := New(dir)

	edges, err := p.EdgesUnder(context.Background(), "example.com/shop")
	require.NoError(t, err)
	assert.Equal(t, []core.Edge{
		{Source: "example.com/shop/billing", Target: "example.com/shop/reporting"},
	}, edges)

	_, err = p.EdgesUnder(context.Background(), "example.com/shop/tools/gen")
	var ee *core.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Err.Error(), "nested module")
}

func TestProvider_IncludeTests(t *testing.T) {
	p := New(setupModule(t))
	p.IncludeTests = true

	edges, err := p.EdgesUnder(context.Background(), "example.com/shop/internal/billing")
	require.NoError(t, err)
	assert.Contains(t, edges, core.Edge{
		Source: "example.com/shop/internal/billing",
		Target: "example.com/shop/internal/testkit",
	})
}

func TestProvider_ModulePath(t *testing.T) {
	mod, err := New(setupModule(t)).ModulePath()
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", mod)
}

func TestProvider_Errors(t *testing.T) {
	tests := []struct {
		name string
		dir  func(t *testing.T) string
		root string
	}{
		{
			name: "no go.mod",
			dir:  func(t *testing.T) string { return t.TempDir() },
			root: "example.com/shop",
		},
		{
			name: "root outside module",
			dir:  setupModule,
			root: "example.com/other",
		},
		{
			name: "missing package directory",
			dir:  setupModule,
			root: "example.com/shop/internal/missing",
		},
		{
			name: "syntax error",
			dir: func(t *testing.T) string {
				dir := setupModule(t)
				writeFile(t, filepath.Join(dir, "internal", "broken", "broken.go"), "package broken\n\nimport (\n")
				return dir
			},
			root: "example.com/shop/internal/broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dir(t)).EdgesUnder(context.Background(), tt.root)
			var ee *core.ExtractionError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, tt.root, ee.Root)
		})
	}
}
