// Package state persists conformance run history and dependency graph
// snapshots in SQLite.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/archgate/pkg/conformance"
	"github.com/leapstack-labs/archgate/pkg/core"
)

// ErrNotFound is returned when a run or snapshot does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence used by the CLI.
type Store interface {
	RecordRun(ctx context.Context, report *conformance.Report, meta RunMeta) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	GetRun(ctx context.Context, id string) (*Run, []RootResult, error)
	PruneRuns(ctx context.Context, keep int) (int64, error)

	SaveSnapshot(ctx context.Context, meta SnapshotMeta, edges []core.Edge) (*Snapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]*Snapshot, error)
	LoadSnapshot(ctx context.Context, id string) (*Snapshot, []core.Edge, error)

	Close() error
}

// RunMeta describes where a run's inputs came from.
type RunMeta struct {
	Provider   string
	PolicyPath string
}

// Run is a recorded conformance run.
type Run struct {
	ID          string        `json:"id"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Passed      bool          `json:"passed"`
	Provider    string        `json:"provider"`
	PolicyPath  string        `json:"policy_path"`
	RootCount   int           `json:"root_count"`
	FailedCount int           `json:"failed_count"`
}

// RootResult is the recorded outcome for one root of a run.
type RootResult struct {
	Root     string             `json:"root"`
	Status   conformance.Status `json:"status"`
	Edges    int                `json:"edges"`
	Duration time.Duration      `json:"duration_ns"`
	Error    string             `json:"error,omitempty"`
	Actual   []string           `json:"actual"`
	Added    []string           `json:"added,omitempty"`
	Removed  []string           `json:"removed,omitempty"`
}

// SnapshotMeta describes the provider a snapshot was captured from.
type SnapshotMeta struct {
	Provider  string
	Delimiter string
}

// Snapshot is a stored set of dependency edges.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Provider  string    `json:"provider"`
	Delimiter string    `json:"delimiter"`
	EdgeCount int       `json:"edge_count"`
}
