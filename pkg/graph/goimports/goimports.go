// Package goimports provides a Dependency Graph Provider that reads import
// declarations straight from Go sources.
//
// Package names are import paths, so the hierarchy delimiter is "/". Files are
// parsed with parser.ImportsOnly and build constraints are not evaluated; use
// the gopackages provider when generated or tag-selected files matter.
package goimports

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/leapstack-labs/archgate/pkg/core"
)

// Delimiter separates import path elements.
const Delimiter = "/"

// Provider scans the Go module rooted at Dir.
type Provider struct {
	Dir          string
	IncludeTests bool
}

// New creates a provider for the module whose go.mod lives in dir.
func New(dir string) *Provider {
	return &Provider{Dir: dir}
}

// ModulePath reads the module path from go.mod.
func (p *Provider) ModulePath() (string, error) {
	gomod := filepath.Join(p.Dir, "go.mod")
	data, err := os.ReadFile(gomod) //nolint:gosec // G304: go.mod of the configured module
	if err != nil {
		return "", err
	}
	mod := modfile.ModulePath(data)
	if mod == "" {
		return "", fmt.Errorf("%s has no module directive", gomod)
	}
	return mod, nil
}

// EdgesUnder parses every package below root and returns its import edges.
func (p *Provider) EdgesUnder(ctx context.Context, root string) ([]core.Edge, error) {
	modPath, err := p.ModulePath()
	if err != nil {
		return nil, &core.ExtractionError{Root: root, Location: p.Dir, Err: err}
	}
	if !core.IsUnder(root, modPath, Delimiter) {
		return nil, &core.ExtractionError{
			Root:     root,
			Location: p.Dir,
			Err:      fmt.Errorf("package is outside module %s", modPath),
		}
	}

	rel := strings.TrimPrefix(strings.TrimPrefix(root, modPath), Delimiter)
	base := filepath.Join(p.Dir, filepath.FromSlash(rel))
	if _, err := os.Stat(base); err != nil {
		return nil, &core.ExtractionError{Root: root, Location: base, Err: err}
	}
	if nested := nestedModule(p.Dir, base); nested != "" {
		return nil, &core.ExtractionError{
			Root:     root,
			Location: nested,
			Err:      fmt.Errorf("package is inside a nested module, not part of %s", modPath),
		}
	}

	fset := token.NewFileSet()
	seen := make(map[core.Edge]bool)
	var edges []core.Edge

	err = filepath.WalkDir(base, func(file string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if file != base && (skipDir(d.Name()) || isModuleRoot(file)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") {
			return nil
		}
		if !p.IncludeTests && strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}

		f, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}

		dirRel, err := filepath.Rel(p.Dir, filepath.Dir(file))
		if err != nil {
			return err
		}
		source := modPath
		if dirRel != "." {
			source = path.Join(modPath, filepath.ToSlash(dirRel))
		}

		for _, imp := range f.Imports {
			target, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				return fmt.Errorf("%s: bad import path %s: %w", file, imp.Path.Value, err)
			}
			e := core.Edge{Source: source, Target: target}
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
		return nil
	})
	if err != nil {
		var ee *core.ExtractionError
		if errors.As(err, &ee) {
			return nil, err
		}
		return nil, &core.ExtractionError{Root: root, Location: base, Err: err}
	}

	core.SortEdges(edges)
	return edges, nil
}

// skipDir mirrors the go tool: testdata, vendor and dot/underscore directories
// do not contain packages of this module.
func skipDir(name string) bool {
	return name == "testdata" || name == "vendor" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// isModuleRoot reports whether dir holds its own go.mod. Such a directory
// belongs to another module, as it does for the go tool.
func isModuleRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "go.mod"))
	return err == nil
}

// nestedModule returns the innermost directory between moduleDir (exclusive)
// and dir (inclusive) that holds its own go.mod, or "".
func nestedModule(moduleDir, dir string) string {
	moduleDir = filepath.Clean(moduleDir)
	for d := filepath.Clean(dir); d != moduleDir; {
		if isModuleRoot(d) {
			return d
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	return ""
}
