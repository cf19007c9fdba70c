// Package gopackages provides a Dependency Graph Provider backed by
// golang.org/x/tools/go/packages.
//
// Unlike the goimports provider it asks the go command for the build graph,
// so cgo-generated files and build tags are resolved the same way the compiler
// resolves them. It requires a go toolchain at run time.
package gopackages

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/leapstack-labs/archgate/pkg/core"
)

// Delimiter separates import path elements.
const Delimiter = "/"

// Provider loads packages from the module in Dir.
type Provider struct {
	Dir          string
	IncludeTests bool
	BuildFlags   []string
}

// New creates a provider that runs the go command in dir.
func New(dir string) *Provider {
	return &Provider{Dir: dir}
}

// EdgesUnder loads root/... and returns the import edges of every loaded package.
func (p *Provider) EdgesUnder(ctx context.Context, root string) ([]core.Edge, error) {
	cfg := &packages.Config{
		Context:    ctx,
		Dir:        p.Dir,
		Mode:       packages.NeedName | packages.NeedImports | packages.NeedForTest,
		Tests:      p.IncludeTests,
		BuildFlags: p.BuildFlags,
	}

	pkgs, err := packages.Load(cfg, root+"/...")
	if err != nil {
		return nil, &core.ExtractionError{Root: root, Location: p.Dir, Err: err}
	}
	if len(pkgs) == 0 {
		return nil, &core.ExtractionError{Root: root, Location: p.Dir, Err: fmt.Errorf("no packages matched %s/...", root)}
	}

	var loadErrs []string
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			loadErrs = append(loadErrs, e.Error())
		}
	})
	if len(loadErrs) > 0 {
		sort.Strings(loadErrs)
		return nil, &core.ExtractionError{
			Root:     root,
			Location: p.Dir,
			Err:      fmt.Errorf("load errors: %s", strings.Join(loadErrs, "; ")),
		}
	}

	seen := make(map[core.Edge]bool)
	var edges []core.Edge
	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.PkgPath, ".test") {
			continue // synthesized test main
		}
		source := sourcePath(pkg)
		if !core.IsUnder(source, root, Delimiter) {
			continue
		}
		for importPath := range pkg.Imports {
			e := core.Edge{Source: source, Target: importPath}
			if e.Source == e.Target || seen[e] {
				continue
			}
			seen[e] = true
			edges = append(edges, e)
		}
	}

	core.SortEdges(edges)
	return edges, nil
}

// sourcePath names the package an edge is attributed to. The external test
// package "x_test" built for x is folded onto x; any other package keeps its
// own path, even when that path ends in "_test".
func sourcePath(pkg *packages.Package) string {
	if pkg.ForTest != "" && pkg.PkgPath == pkg.ForTest+"_test" {
		return pkg.ForTest
	}
	return pkg.PkgPath
}
