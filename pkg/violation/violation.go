// Package violation computes the internal dependencies of a governed root
// that its policy does not allow.
package violation

import (
	"sort"

	"github.com/leapstack-labs/archgate/pkg/core"
)

// Classifier is the part of namespace.Classifier the calculator needs.
type Classifier interface {
	IsInternal(name string) bool
	Delimiter() string
}

// Result is a violation set plus the sources that produced each violation.
type Result struct {
	Violations core.Set
	// Evidence maps each violating target to the sorted packages that reference it.
	Evidence map[string][]string
}

// Compute returns the violation set of root.
//
// An edge is a violation when its source is under root and its target is
// internal, is not the source itself, is not under root, and is not under any
// allowed prefix. The result is deduplicated across every package under root.
func Compute(root string, rp core.RootPolicy, edges []core.Edge, c Classifier) core.Set {
	return Calculate(root, rp, edges, c).Violations
}

// Calculate is Compute with evidence attached.
func Calculate(root string, rp core.RootPolicy, edges []core.Edge, c Classifier) Result {
	delim := c.Delimiter()
	res := Result{
		Violations: core.NewSet(),
		Evidence:   make(map[string][]string),
	}
	sources := make(map[string]core.Set)

	for _, e := range edges {
		if !core.IsUnder(e.Source, root, delim) {
			continue
		}
		if !allowed(root, rp, e, c) {
			res.Violations.Add(e.Target)
			if sources[e.Target] == nil {
				sources[e.Target] = core.NewSet()
			}
			sources[e.Target].Add(e.Source)
		}
	}

	for target, s := range sources {
		res.Evidence[target] = s.Sorted()
	}
	return res
}

// allowed reports whether a single edge is permitted for root.
func allowed(root string, rp core.RootPolicy, e core.Edge, c Classifier) bool {
	if !c.IsInternal(e.Target) {
		return true
	}
	delim := c.Delimiter()
	if e.Target == e.Source || core.IsUnder(e.Target, root, delim) {
		return true
	}
	return core.IsUnderAny(e.Target, rp.Allowed, delim)
}

// Targets returns the violating targets of res ordered by how many sources reference them,
// most referenced first, ties broken by name.
func (r Result) Targets() []string {
	targets := r.Violations.Sorted()
	sort.SliceStable(targets, func(i, j int) bool {
		return len(r.Evidence[targets[i]]) > len(r.Evidence[targets[j]])
	})
	return targets
}
