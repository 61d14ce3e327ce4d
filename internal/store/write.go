package store

import (
	"context"
	"fmt"
)

// WriteRun records a run with its trace and errors in one transaction.
// Writing a run ID twice is an error.
func (s *Store) WriteRun(ctx context.Context, run Run) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, pass, digest, frame, harness_version, format_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Scenario,
		boolToInt(run.Pass),
		run.Digest,
		run.Frame,
		run.HarnessVersion,
		run.FormatVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	for i, rec := range run.Trace {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_traces (run_id, position, source, kind, body)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, i, rec.Source, rec.Kind, rec.Body)
		if err != nil {
			return fmt.Errorf("write run trace %d: %w", i, err)
		}
	}

	for i, msg := range run.Errors {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_errors (run_id, position, message)
			VALUES (?, ?, ?)
		`, run.ID, i, msg)
		if err != nil {
			return fmt.Errorf("write run error %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
