// Package manifest provides a Dependency Graph Provider over a compiled-artifact tree.
//
// Package a.b.c is expected at <dir>/a/b/c/. Every compiled package directory
// carries a manifest written by the build (deps.yaml by default) listing the
// packages it references:
//
//	package: com.acme.web        # optional, defaults to the directory
//	dependencies:
//	  - com.acme.core
//	  - org.springframework.web
//
// The manifest is produced after compilation, so references introduced by
// code generation or weaving are part of the graph.
package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/archgate/pkg/core"
)

// DefaultFileName is the manifest file looked up in each package directory.
const DefaultFileName = "deps.yaml"

// File is the on-disk manifest format.
type File struct {
	Package      string   `yaml:"package"`
	Dependencies []string `yaml:"dependencies"`
}

// Provider reads manifests below Dir.
type Provider struct {
	Dir       string
	FileName  string
	Delimiter string
}

// New creates a manifest provider rooted at dir.
func New(dir, delim string) *Provider {
	return &Provider{Dir: dir, FileName: DefaultFileName, Delimiter: delim}
}

// EdgesUnder walks the directory of root and returns the edges of every package below it.
func (p *Provider) EdgesUnder(ctx context.Context, root string) ([]core.Edge, error) {
	delim := p.delimiter()
	base := core.ToPath(p.Dir, root, delim)

	info, err := os.Stat(base)
	if err != nil {
		return nil, &core.ExtractionError{Root: root, Location: base, Err: err}
	}
	if !info.IsDir() {
		return nil, &core.ExtractionError{Root: root, Location: base, Err: fmt.Errorf("not a directory")}
	}

	seen := make(map[core.Edge]bool)
	var edges []core.Edge

	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || d.Name() != p.fileName() {
			return nil
		}

		m, err := readFile(path)
		if err != nil {
			return err
		}

		source := strings.TrimSpace(m.Package)
		if source == "" {
			rel, err := filepath.Rel(p.Dir, filepath.Dir(path))
			if err != nil {
				return err
			}
			source = core.FromPath(rel, delim)
		}
		if !core.IsUnder(source, root, delim) {
			return nil
		}

		for _, dep := range m.Dependencies {
			dep = strings.TrimSpace(dep)
			if dep == "" {
				continue
			}
			e := core.Edge{Source: source, Target: dep}
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

func (p *Provider) fileName() string {
	if p.FileName == "" {
		return DefaultFileName
	}
	return p.FileName
}

func (p *Provider) delimiter() string {
	if p.Delimiter == "" {
		return core.DefaultDelimiter
	}
	return p.Delimiter
}

// readFile decodes a manifest strictly; unknown keys are a parse error.
func readFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from walking the artifact tree
	if err != nil {
		return nil, err
	}

	var m File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

// Write stores a manifest for pkg below dir, creating directories as needed.
// Build tooling and tests use it to lay out artifact trees.
func Write(dir, pkg, delim string, deps []string) error {
	target := core.ToPath(dir, pkg, delim)
	if err := os.MkdirAll(target, 0750); err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	data, err := yaml.Marshal(&File{Package: pkg, Dependencies: deps})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(target, DefaultFileName), data, 0600)
}
