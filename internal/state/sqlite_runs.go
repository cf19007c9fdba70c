package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/archgate/pkg/conformance"
)

// RecordRun stores a finished report with every root result and its
// violation sets.
func (s *SQLiteStore) RecordRun(ctx context.Context, report *conformance.Report, meta RunMeta) (*Run, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	run := &Run{
		ID:          generateID(),
		StartedAt:   report.StartedAt.UTC(),
		Duration:    report.Duration,
		Passed:      report.Passed(),
		Provider:    meta.Provider,
		PolicyPath:  meta.PolicyPath,
		RootCount:   len(report.Results),
		FailedCount: len(report.Failed()),
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, duration_ms, passed, provider, policy_path, root_count, failed_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), run.Duration.Milliseconds(), run.Passed,
		run.Provider, run.PolicyPath, run.RootCount, run.FailedCount,
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	for _, res := range report.Results {
		errMsg := ""
		if res.Err != nil {
			errMsg = res.Err.Error()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO root_results (run_id, root, status, edge_count, duration_ms, error)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, res.Root, string(res.Status), res.Edges, res.Duration.Milliseconds(), errMsg,
		); err != nil {
			return nil, fmt.Errorf("insert result for %s: %w", res.Root, err)
		}

		for kind, names := range map[string][]string{
			"actual":  res.Actual,
			"added":   res.Added,
			"removed": res.Removed,
		} {
			for _, name := range names {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO violations (run_id, root, package, kind) VALUES (?, ?, ?, ?)`,
					run.ID, res.Root, name, kind,
				); err != nil {
					return nil, fmt.Errorf("insert %s violation %s for %s: %w", kind, name, res.Root, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Debug("recorded run",
		slog.String("id", run.ID),
		slog.Int("roots", run.RootCount),
		slog.Int("failed", run.FailedCount))
	return run, nil
}

const runColumns = `id, started_at, duration_ms, passed, provider, policy_path, root_count, failed_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r          Run
		startedAt  string
		durationMS int64
	)
	if err := row.Scan(&r.ID, &startedAt, &durationMS, &r.Passed, &r.Provider, &r.PolicyPath, &r.RootCount, &r.FailedCount); err != nil {
		return nil, err
	}
	t, err := parseTime(startedAt)
	if err != nil {
		return nil, err
	}
	r.StartedAt = t
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return &r, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a run and its per-root results. An empty id or "latest"
// selects the most recent run; otherwise a unique ID prefix is accepted.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, []RootResult, error) {
	if err := s.ready(); err != nil {
		return nil, nil, err
	}

	var row *sql.Row
	if id == "" || id == "latest" {
		row = s.db.QueryRowContext(ctx,
			`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT 1`)
	} else {
		row = s.db.QueryRowContext(ctx,
			`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY id = ? DESC LIMIT 1`,
			id, id+"%", id)
	}
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("run %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get run: %w", err)
	}

	results, err := s.rootResults(ctx, run.ID)
	if err != nil {
		return nil, nil, err
	}
	return run, results, nil
}

func (s *SQLiteStore) rootResults(ctx context.Context, runID string) ([]RootResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT root, status, edge_count, duration_ms, error
		FROM root_results WHERE run_id = ? ORDER BY root`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get root results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []RootResult
	index := make(map[string]int)
	for rows.Next() {
		var (
			r          RootResult
			status     string
			durationMS int64
		)
		if err := rows.Scan(&r.Root, &status, &r.Edges, &durationMS, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan root result: %w", err)
		}
		r.Status = conformance.Status(status)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Actual = []string{}
		index[r.Root] = len(results)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get root results: %w", err)
	}

	vrows, err := s.db.QueryContext(ctx, `
		SELECT root, package, kind FROM violations
		WHERE run_id = ? ORDER BY root, kind, package`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get violations: %w", err)
	}
	defer func() { _ = vrows.Close() }()

	for vrows.Next() {
		var root, pkg, kind string
		if err := vrows.Scan(&root, &pkg, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan violation: %w", err)
		}
		i, ok := index[root]
		if !ok {
			continue
		}
		switch kind {
		case "actual":
			results[i].Actual = append(results[i].Actual, pkg)
		case "added":
			results[i].Added = append(results[i].Added, pkg)
		case "removed":
			results[i].Removed = append(results[i].Removed, pkg)
		}
	}
	if err := vrows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get violations: %w", err)
	}
	return results, nil
}

// PruneRuns deletes all but the newest keep runs and returns how many were removed.
func (s *SQLiteStore) PruneRuns(ctx context.Context, keep int) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC, id LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	s.logger.Debug("pruned runs", slog.Int64("deleted", n), slog.Int("kept", keep))
	return n, nil
}
