package manifest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/archgate/pkg/core"
)

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, Write(dir, "billing", ".", []string{"billing.core", "thirdparty.pdf"}))
	require.NoError(t, Write(dir, "billing.core", ".", []string{"reporting.invoice", "reporting.invoice", " "}))
	require.NoError(t, Write(dir, "billingx", ".", []string{"audit.trail"}))
	require.NoError(t, Write(dir, "reporting.invoice", ".", []string{"billing"}))
	return dir
}

func TestProvider_EdgesUnder(t *testing.T) {
	p := New(writeTree(t), ".")

	edges, err := p.EdgesUnder(context.Background(), "billing")
	require.NoError(t, err)
	assert.Equal(t, []core.Edge{
		{Source: "billing", Target: "billing.core"},
		{Source: "billing", Target: "thirdparty.pdf"},
		{Source: "billing.core", Target: "reporting.invoice"},
	}, edges)
}

func TestProvider_SubPackageRoot(t *testing.T) {
	p := New(writeTree(t), ".")

	edges, err := p.EdgesUnder(context.Background(), "billing.core")
	require.NoError(t, err)
	assert.Equal(t, []core.Edge{{Source: "billing.core", Target: "reporting.invoice"}}, edges)
}

func TestProvider_PackageDerivedFromPath(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "org", "web")
	require.NoError(t, os.MkdirAll(pkgDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, DefaultFileName), []byte("dependencies: [org.core]\n"), 0600))

	edges, err := New(dir, ".").EdgesUnder(context.Background(), "org")
	require.NoError(t, err)
	assert.Equal(t, []core.Edge{{Source: "org.web", Target: "org.core"}}, edges)
}

func TestProvider_JSONManifest(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "org", "api")
	require.NoError(t, os.MkdirAll(pkgDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "deps.json"),
		[]byte(`{"package": "org.api", "dependencies": ["org.web"]}`), 0600))

	p := &Provider{Dir: dir, FileName: "deps.json", Delimiter: "."}
	edges, err := p.EdgesUnder(context.Background(), "org.api")
	require.NoError(t, err)
	assert.Equal(t, []core.Edge{{Source: "org.api", Target: "org.web"}}, edges)
}

func TestProvider_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
		root  string
		isErr error
	}{
		{
			name:  "missing root directory",
			setup: func(*testing.T, string) {},
			root:  "org.missing",
			isErr: fs.ErrNotExist,
		},
		{
			name: "unparsable manifest",
			setup: func(t *testing.T, dir string) {
				pkgDir := filepath.Join(dir, "org", "bad")
				require.NoError(t, os.MkdirAll(pkgDir, 0750))
				require.NoError(t, os.WriteFile(filepath.Join(pkgDir, DefaultFileName), []byte("dependencies: [unclosed"), 0600))
			},
			root: "org.bad",
		},
		{
			name: "unknown manifest key",
			setup: func(t *testing.T, dir string) {
				pkgDir := filepath.Join(dir, "org", "odd")
				require.NoError(t, os.MkdirAll(pkgDir, 0750))
				require.NoError(t, os.WriteFile(filepath.Join(pkgDir, DefaultFileName), []byte("deps: [org.core]\n"), 0600))
			},
			root: "org.odd",
		},
		{
			name: "root is a file",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.MkdirAll(filepath.Join(dir, "org"), 0750))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "org", "file"), []byte("x"), 0600))
			},
			root: "org.file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			edges, err := New(dir, ".").EdgesUnder(context.Background(), tt.root)
			require.Error(t, err)
			assert.Nil(t, edges)

			var ee *core.ExtractionError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, tt.root, ee.Root)
			if tt.isErr != nil {
				assert.True(t, errors.Is(err, tt.isErr))
			}
		})
	}
}
