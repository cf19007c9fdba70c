package dag

import (
	"reflect"
	"testing"
)

// layered builds web -> service -> core with util used by everyone.
func layered(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	for _, id := range []string{"core", "util", "service", "web"} {
		g.AddNode(id, "")
	}
	edges := [][2]string{
		{"core", "service"},
		{"util", "service"},
		{"util", "core"},
		{"service", "web"},
		{"util", "web"},
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%s, %s): %v", e[0], e[1], err)
		}
	}
	return g
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := layered(t)

	if g.NodeCount() != 4 {
		t.Errorf("expected 4 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 5 {
		t.Errorf("expected 5 edges, got %d", g.EdgeCount())
	}

	// duplicate edges are ignored
	if err := g.AddEdge("util", "web"); err != nil {
		t.Fatalf("re-adding edge: %v", err)
	}
	if g.EdgeCount() != 5 {
		t.Errorf("duplicate edge counted, got %d", g.EdgeCount())
	}
}

func TestGraph_AddNode_UpdatesNote(t *testing.T) {
	g := NewGraph()
	g.AddNode("web", "")
	g.AddNode("web", "JavascriptGenerator")

	n, ok := g.Node("web")
	if !ok {
		t.Fatal("node missing")
	}
	if n.Note != "JavascriptGenerator" {
		t.Errorf("expected note to be updated, got %q", n.Note)
	}
	if g.NodeCount() != 1 {
		t.Errorf("expected 1 node, got %d", g.NodeCount())
	}
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "")

	if err := g.AddEdge("a", "nonexistent"); err == nil {
		t.Error("expected error for nonexistent dependent")
	}
	if err := g.AddEdge("nonexistent", "a"); err == nil {
		t.Error("expected error for nonexistent dependency")
	}
}

func TestGraph_AddEdge_SelfLoop(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "")

	if err := g.AddEdge("a", "a"); err == nil {
		t.Error("expected error for self-loop")
	}
}

func TestGraph_DependenciesAndDependents(t *testing.T) {
	g := layered(t)

	if got := g.Dependencies("service"); !reflect.DeepEqual(got, []string{"core", "util"}) {
		t.Errorf("Dependencies(service) = %v", got)
	}
	if got := g.Dependents("util"); !reflect.DeepEqual(got, []string{"core", "service", "web"}) {
		t.Errorf("Dependents(util) = %v", got)
	}
	if got := g.Dependencies("util"); len(got) != 0 {
		t.Errorf("util should have no dependencies, got %v", got)
	}
}

func TestGraph_HasCycle_NoCycle(t *testing.T) {
	g := layered(t)

	if hasCycle, path := g.HasCycle(); hasCycle {
		t.Errorf("expected no cycle, but found: %v", path)
	}
	if cycles := g.Cycles(); len(cycles) != 0 {
		t.Errorf("expected no components, got %v", cycles)
	}
}

func TestGraph_HasCycle_WithCycle(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "")
	g.AddNode("b", "")
	g.AddNode("c", "")

	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("b", "c")
	_ = g.AddEdge("c", "a")

	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Fatal("expected cycle to be detected")
	}
	want := []string{"a", "b", "c", "a"}
	if !reflect.DeepEqual(path, want) {
		t.Errorf("cycle path = %v, want %v", path, want)
	}
}

func TestGraph_Cycles(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		g.AddNode(id, "")
	}
	// a <-> b, and c -> d -> e -> c, f hangs off e
	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("b", "a")
	_ = g.AddEdge("c", "d")
	_ = g.AddEdge("d", "e")
	_ = g.AddEdge("e", "c")
	_ = g.AddEdge("e", "f")

	got := g.Cycles()
	want := [][]string{{"a", "b"}, {"c", "d", "e"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Cycles() = %v, want %v", got, want)
	}
}

func TestGraph_Layers(t *testing.T) {
	g := layered(t)

	layers, err := g.Layers()
	if err != nil {
		t.Fatalf("Layers: %v", err)
	}
	want := [][]string{{"util"}, {"core"}, {"service"}, {"web"}}
	if !reflect.DeepEqual(layers, want) {
		t.Errorf("Layers() = %v, want %v", layers, want)
	}
}

func TestGraph_Layers_Independent(t *testing.T) {
	g := NewGraph()
	g.AddNode("billing", "")
	g.AddNode("reporting", "")

	layers, err := g.Layers()
	if err != nil {
		t.Fatalf("Layers: %v", err)
	}
	want := [][]string{{"billing", "reporting"}}
	if !reflect.DeepEqual(layers, want) {
		t.Errorf("Layers() = %v, want %v", layers, want)
	}
}

func TestGraph_Layers_Empty(t *testing.T) {
	layers, err := NewGraph().Layers()
	if err != nil {
		t.Fatalf("Layers: %v", err)
	}
	if len(layers) != 0 {
		t.Errorf("expected no layers, got %v", layers)
	}
}

func TestGraph_Layers_WithCycle(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "")
	g.AddNode("b", "")
	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("b", "a")

	if _, err := g.Layers(); err == nil {
		t.Error("expected error for cyclic graph")
	}
}

func TestGraph_UpstreamAndDownstream(t *testing.T) {
	g := layered(t)

	if got := g.Upstream("web"); !reflect.DeepEqual(got, []string{"core", "service", "util"}) {
		t.Errorf("Upstream(web) = %v", got)
	}
	if got := g.Downstream("core"); !reflect.DeepEqual(got, []string{"service", "web"}) {
		t.Errorf("Downstream(core) = %v", got)
	}
	if got := g.Upstream("util"); len(got) != 0 {
		t.Errorf("Upstream(util) = %v, want empty", got)
	}
}

func TestGraph_FoundationsAndTops(t *testing.T) {
	g := layered(t)

	if got := g.Foundations(); !reflect.DeepEqual(got, []string{"util"}) {
		t.Errorf("Foundations() = %v", got)
	}
	if got := g.Tops(); !reflect.DeepEqual(got, []string{"web"}) {
		t.Errorf("Tops() = %v", got)
	}
}

func TestGraph_Subgraph(t *testing.T) {
	g := layered(t)

	sub := g.Subgraph([]string{"core", "service", "missing"})
	if sub.NodeCount() != 2 {
		t.Errorf("expected 2 nodes, got %d", sub.NodeCount())
	}
	if sub.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", sub.EdgeCount())
	}
	if got := sub.Dependencies("service"); !reflect.DeepEqual(got, []string{"core"}) {
		t.Errorf("Dependencies(service) = %v", got)
	}
}
