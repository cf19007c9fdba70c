package core

import "sort"

// Edge is a single efferent dependency: Source references Target.
// Edges are recorded per concrete package, never aggregated at a root.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// SortEdges orders edges by source, then target, for stable output.
func SortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
}

// EdgesUnder filters edges to those whose source lies under root.
func EdgesUnder(edges []Edge, root, delim string) []Edge {
	var out []Edge
	for _, e := range edges {
		if IsUnder(e.Source, root, delim) {
			out = append(out, e)
		}
	}
	return out
}
