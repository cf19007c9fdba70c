// Package namespace classifies package names as internal (governed) or external.
package namespace

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/archgate/pkg/core"
)

// Classifier decides whether a package belongs to the organisation's own code.
// A Classifier is immutable once built and safe for concurrent use.
type Classifier struct {
	roots []string
	delim string
}

// New creates a Classifier for the given organisation-root prefixes.
// Empty and duplicate prefixes are dropped; an empty delim means core.DefaultDelimiter.
func New(delim string, roots ...string) *Classifier {
	if delim == "" {
		delim = core.DefaultDelimiter
	}
	seen := make(map[string]bool, len(roots))
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		cleaned = append(cleaned, r)
	}
	sort.Strings(cleaned)
	return &Classifier{roots: cleaned, delim: delim}
}

// IsInternal reports whether name is under one of the internal roots.
// Anything else is external and is never a violation.
func (c *Classifier) IsInternal(name string) bool {
	return core.IsUnderAny(name, c.roots, c.delim)
}

// Roots returns the internal root prefixes in lexical order.
func (c *Classifier) Roots() []string {
	out := make([]string, len(c.roots))
	copy(out, c.roots)
	return out
}

// Delimiter returns the hierarchy delimiter used for matching.
func (c *Classifier) Delimiter() string {
	return c.delim
}
