package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/archgate/pkg/core"
)

// SaveSnapshot stores a set of edges captured from a provider.
// Duplicate edges are stored once.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, meta SnapshotMeta, edges []core.Edge) (*Snapshot, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	delim := meta.Delimiter
	if delim == "" {
		delim = core.DefaultDelimiter
	}

	unique := make(map[core.Edge]struct{}, len(edges))
	for _, e := range edges {
		unique[e] = struct{}{}
	}

	snap := &Snapshot{
		ID:        generateID(),
		CreatedAt: time.Now().UTC(),
		Provider:  meta.Provider,
		Delimiter: delim,
		EdgeCount: len(unique),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, created_at, provider, delimiter, edge_count)
		VALUES (?, ?, ?, ?, ?)`,
		snap.ID, formatTime(snap.CreatedAt), snap.Provider, snap.Delimiter, snap.EdgeCount,
	); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_edges (snapshot_id, source, target) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for e := range unique {
		if _, err := stmt.ExecContext(ctx, snap.ID, e.Source, e.Target); err != nil {
			return nil, fmt.Errorf("insert edge %s -> %s: %w", e.Source, e.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Debug("saved snapshot", slog.String("id", snap.ID), slog.Int("edges", snap.EdgeCount))
	return snap, nil
}

const snapshotColumns = `id, created_at, provider, delimiter, edge_count`

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var (
		snap      Snapshot
		createdAt string
	)
	if err := row.Scan(&snap.ID, &createdAt, &snap.Provider, &snap.Delimiter, &snap.EdgeCount); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	snap.CreatedAt = t
	return &snap, nil
}

// ListSnapshots returns the most recent snapshots, newest first.
func (s *SQLiteStore) ListSnapshots(ctx context.Context, limit int) ([]*Snapshot, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return out, nil
}

// LoadSnapshot returns a snapshot and its edges sorted by source then target.
// An empty id or "latest" selects the most recent snapshot.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, id string) (*Snapshot, []core.Edge, error) {
	if err := s.ready(); err != nil {
		return nil, nil, err
	}

	var row *sql.Row
	if id == "" || id == "latest" {
		row = s.db.QueryRowContext(ctx,
			`SELECT `+snapshotColumns+` FROM snapshots ORDER BY created_at DESC, id LIMIT 1`)
	} else {
		row = s.db.QueryRowContext(ctx,
			`SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id)
	}
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("snapshot %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, target FROM snapshot_edges
		WHERE snapshot_id = ? ORDER BY source, target`, snap.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	edges := make([]core.Edge, 0, snap.EdgeCount)
	for rows.Next() {
		var e core.Edge
		if err := rows.Scan(&e.Source, &e.Target); err != nil {
			return nil, nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot edges: %w", err)
	}
	return snap, edges, nil
}
