package graph

import (
	"context"

	"github.com/leapstack-labs/archgate/pkg/core"
)

// Provider extracts dependency edges for every package under a root.
//
// EdgesUnder returns only edges whose source is under root. It fails with a
// *core.ExtractionError when the underlying location is missing or cannot be
// parsed, and never returns partial results.
type Provider interface {
	EdgesUnder(ctx context.Context, root string) ([]core.Edge, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, root string) ([]core.Edge, error)

// EdgesUnder calls f(ctx, root).
func (f ProviderFunc) EdgesUnder(ctx context.Context, root string) ([]core.Edge, error) {
	return f(ctx, root)
}

// Static serves a fixed edge list.
type Static struct {
	Edges     []core.Edge
	Delimiter string
}

// NewStatic creates a provider over a copy of edges.
func NewStatic(delim string, edges ...core.Edge) *Static {
	cp := make([]core.Edge, len(edges))
	copy(cp, edges)
	return &Static{Edges: cp, Delimiter: delim}
}

// EdgesUnder returns the edges whose source is under root, in stable order.
func (s *Static) EdgesUnder(ctx context.Context, root string) ([]core.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, &core.ExtractionError{Root: root, Err: err}
	}
	out := core.EdgesUnder(s.Edges, root, s.Delimiter)
	core.SortEdges(out)
	return out, nil
}
