// Package dag models the governed roots of a policy as a directed graph.
// An edge runs from a root to every root that is allowed to depend on it,
// so layers come out bottom-up and cycles in the allowed graph are easy to spot.
package dag

import (
	"fmt"
	"slices"
	"sort"
)

// Node is a governed root in the layer graph.
type Node struct {
	// ID is the root package name
	ID string
	// Note is the free-text policy note for the root
	Note string
}

// Graph is a directed graph of governed roots.
type Graph struct {
	nodes      map[string]*Node
	dependents map[string][]string // dependency -> roots allowed to use it
	deps       map[string][]string // root -> roots it may use
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		dependents: make(map[string][]string),
		deps:       make(map[string][]string),
	}
}

// AddNode adds a root to the graph, updating the note if it already exists.
func (g *Graph) AddNode(id, note string) {
	if n, exists := g.nodes[id]; exists {
		n.Note = note
		return
	}
	g.nodes[id] = &Node{ID: id, Note: note}
	g.dependents[id] = []string{}
	g.deps[id] = []string{}
}

// AddEdge records that dependent may use dependency.
func (g *Graph) AddEdge(dependency, dependent string) error {
	if _, exists := g.nodes[dependency]; !exists {
		return fmt.Errorf("dependency node %q does not exist", dependency)
	}
	if _, exists := g.nodes[dependent]; !exists {
		return fmt.Errorf("dependent node %q does not exist", dependent)
	}
	if dependency == dependent {
		return fmt.Errorf("self-loop detected: %s", dependency)
	}

	if !slices.Contains(g.dependents[dependency], dependent) {
		g.dependents[dependency] = append(g.dependents[dependency], dependent)
	}
	if !slices.Contains(g.deps[dependent], dependency) {
		g.deps[dependent] = append(g.deps[dependent], dependency)
	}
	return nil
}

// Node returns a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Dependencies returns the roots id may use, sorted.
func (g *Graph) Dependencies(id string) []string {
	return sortedCopy(g.deps[id])
}

// Dependents returns the roots allowed to use id, sorted.
func (g *Graph) Dependents(id string) []string {
	return sortedCopy(g.dependents[id])
}

// Nodes returns all nodes sorted by ID.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, ds := range g.dependents {
		count += len(ds)
	}
	return count
}

// HasCycle reports whether the graph contains a cycle and returns one cycle
// path, first node repeated at the end.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	from := make(map[string]string)

	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, next := range sortedCopy(g.dependents[id]) {
			if !visited[next] {
				from[next] = id
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				cycle = []string{id, next}
				for curr := id; curr != next; curr = from[curr] {
					cycle = append([]string{from[curr]}, cycle...)
				}
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for _, n := range g.Nodes() {
		if !visited[n.ID] && dfs(n.ID) {
			return true, cycle
		}
	}
	return false, nil
}

// Cycles returns every strongly connected component with more than one root.
// Each component is sorted and the list is ordered by its first member.
func (g *Graph) Cycles() [][]string {
	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var out [][]string

	var connect func(id string)
	connect = func(id string) {
		indices[id] = index
		lowlink[id] = index
		index++
		stack = append(stack, id)
		onStack[id] = true

		for _, next := range g.dependents[id] {
			if _, seen := indices[next]; !seen {
				connect(next)
				lowlink[id] = min(lowlink[id], lowlink[next])
			} else if onStack[next] {
				lowlink[id] = min(lowlink[id], indices[next])
			}
		}

		if lowlink[id] != indices[id] {
			return
		}
		var component []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == id {
				break
			}
		}
		if len(component) > 1 {
			sort.Strings(component)
			out = append(out, component)
		}
	}

	for _, n := range g.Nodes() {
		if _, seen := indices[n.ID]; !seen {
			connect(n.ID)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i][0] < out[j][0]
	})
	return out
}

// Layers groups roots so that every root only depends on roots in lower
// layers. Layer 0 holds roots with no governed dependencies.
func (g *Graph) Layers() ([][]string, error) {
	if hasCycle, cycle := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cycle)
	}

	assigned := make(map[string]int, len(g.nodes))

	var level func(id string) int
	level = func(id string) int {
		if l, ok := assigned[id]; ok {
			return l
		}
		l := 0
		for _, dep := range g.deps[id] {
			l = max(l, level(dep)+1)
		}
		assigned[id] = l
		return l
	}

	top := -1
	for id := range g.nodes {
		top = max(top, level(id))
	}

	layers := make([][]string, top+1)
	for id, l := range assigned {
		layers[l] = append(layers[l], id)
	}
	for i := range layers {
		sort.Strings(layers[i])
	}
	return layers, nil
}

// Upstream returns every root id may reach through its dependencies.
func (g *Graph) Upstream(id string) []string {
	return g.reach(id, g.deps)
}

// Downstream returns every root that may reach id.
func (g *Graph) Downstream(id string) []string {
	return g.reach(id, g.dependents)
}

func (g *Graph) reach(id string, adj map[string][]string) []string {
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(cur string) {
		for _, next := range adj[cur] {
			if !seen[next] {
				seen[next] = true
				walk(next)
			}
		}
	}
	walk(id)
	delete(seen, id)

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Foundations returns roots that depend on no other governed root.
func (g *Graph) Foundations() []string {
	var out []string
	for id := range g.nodes {
		if len(g.deps[id]) == 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Tops returns roots no other governed root depends on.
func (g *Graph) Tops() []string {
	var out []string
	for id := range g.nodes {
		if len(g.dependents[id]) == 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Subgraph returns a new graph with only the given roots and the edges between them.
func (g *Graph) Subgraph(ids []string) *Graph {
	sub := NewGraph()
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		if n, ok := g.nodes[id]; ok {
			keep[id] = true
			sub.AddNode(id, n.Note)
		}
	}
	for id := range keep {
		for _, next := range g.dependents[id] {
			if keep[next] {
				_ = sub.AddEdge(id, next)
			}
		}
	}
	return sub
}

func sortedCopy(in []string) []string {
	out := slices.Clone(in)
	sort.Strings(out)
	return out
}
