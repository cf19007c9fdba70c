package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/leapstack-labs/archgate/pkg/core"
	"github.com/leapstack-labs/archgate/pkg/graph"
)

// SnapshotProvider serves edges from a stored snapshot. The snapshot is
// read on first use and shared by every root of the run.
type SnapshotProvider struct {
	store Store
	id    string

	once   sync.Once
	static *graph.Static
	snap   *Snapshot
	err    error
}

var _ graph.Provider = (*SnapshotProvider)(nil)

// NewSnapshotProvider creates a provider for snapshot id ("" or "latest" for the newest).
func NewSnapshotProvider(store Store, id string) *SnapshotProvider {
	return &SnapshotProvider{store: store, id: id}
}

func (p *SnapshotProvider) load(ctx context.Context) {
	p.once.Do(func() {
		snap, edges, err := p.store.LoadSnapshot(ctx, p.id)
		if err != nil {
			p.err = err
			return
		}
		p.snap = snap
		p.static = graph.NewStatic(snap.Delimiter, edges...)
	})
}

// Snapshot returns the metadata of the loaded snapshot.
func (p *SnapshotProvider) Snapshot(ctx context.Context) (*Snapshot, error) {
	p.load(ctx)
	return p.snap, p.err
}

// EdgesUnder returns the snapshot edges whose source is under root.
func (p *SnapshotProvider) EdgesUnder(ctx context.Context, root string) ([]core.Edge, error) {
	p.load(ctx)
	if p.err != nil {
		return nil, &core.ExtractionError{
			Root:     root,
			Location: fmt.Sprintf("snapshot %s", displayID(p.id)),
			Err:      p.err,
		}
	}
	return p.static.EdgesUnder(ctx, root)
}

func displayID(id string) string {
	if id == "" {
		return "latest"
	}
	return id
}
