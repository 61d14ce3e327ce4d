package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `seq, id, scenario, pass, digest, frame, harness_version, format_version`

// ListRuns returns run summaries ordered by seq. An empty scenario lists
// every run.
//
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ListRuns(ctx context.Context, scenario string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if scenario != "" {
		query += ` WHERE scenario = ?`
		args = append(args, scenario)
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LastRun returns the most recent run of a scenario, without its trace.
// Returns ErrRunNotFound if the scenario was never recorded.
func (s *Store) LastRun(ctx context.Context, scenario string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE scenario = ?
		ORDER BY seq DESC
		LIMIT 1
	`, scenario)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scenario %q: %w", scenario, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ReadRun returns a run with its trace and errors.
// Returns ErrRunNotFound if the ID is unknown.
func (s *Store) ReadRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %q: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}

	if run.Trace, err = s.readTrace(ctx, id); err != nil {
		return nil, err
	}
	if run.Errors, err = s.readErrors(ctx, id); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *Store) readTrace(ctx context.Context, runID string) ([]TraceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, kind, body FROM run_traces
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run trace: %w", err)
	}
	defer rows.Close()

	trace := []TraceRecord{}
	for rows.Next() {
		var rec TraceRecord
		if err := rows.Scan(&rec.Source, &rec.Kind, &rec.Body); err != nil {
			return nil, fmt.Errorf("scan run trace: %w", err)
		}
		trace = append(trace, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run trace: %w", err)
	}
	return trace, nil
}

func (s *Store) readErrors(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message FROM run_errors
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run errors: %w", err)
	}
	defer rows.Close()

	var msgs []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, fmt.Errorf("scan run error: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run errors: %w", err)
	}
	return msgs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var pass int
	err := row.Scan(
		&run.Seq,
		&run.ID,
		&run.Scenario,
		&pass,
		&run.Digest,
		&run.Frame,
		&run.HarnessVersion,
		&run.FormatVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("scan run: %w", err)
	}
	run.Pass = pass != 0
	return run, nil
}
