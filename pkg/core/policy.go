package core

import "sort"

// RootPolicy is the rule set for one governed root.
type RootPolicy struct {
	// Allowed lists package prefixes the root may depend on.
	// The root itself is always implicitly allowed.
	Allowed []string `json:"allowed" yaml:"allowed"`
	// Tolerated lists exact package names that are known, reviewed violations.
	// Computed violations must match this list exactly.
	Tolerated []string `json:"tolerated" yaml:"tolerated"`
	// Note is free text explaining the entry, typically why debt is tolerated.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Expected returns the tolerated names as a set.
func (p RootPolicy) Expected() Set {
	return NewSet(p.Tolerated...)
}

// Policy maps each governed root package to its rules.
type Policy map[string]RootPolicy

// Roots returns the governed roots in lexical order.
func (p Policy) Roots() []string {
	roots := make([]string, 0, len(p))
	for r := range p {
		roots = append(roots, r)
	}
	sort.Strings(roots)
	return roots
}

// Lookup returns the rules for root.
func (p Policy) Lookup(root string) (RootPolicy, bool) {
	rp, ok := p[root]
	return rp, ok
}
