package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/peano/internal/ir"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("not found")

// ReadRun returns the run with the given ID.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, expr, result, error_code, error, steps, max_depth
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns every run in append order.
//
// Returns an empty slice (not nil) for an empty log.
func (s *Store) ListRuns(ctx context.Context) ([]ir.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expr, result, error_code, error, steps, max_depth
		FROM runs
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
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

// LastRunID returns the most recently appended run ID.
func (s *Store) LastRunID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY seq DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("last run: %w", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("last run: %w", err)
	}
	return id, nil
}

// ReadSteps returns the steps of a run ordered by seq.
//
// Returns an empty slice (not nil) if the run has no steps.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]ir.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, depth, op, clause, args, result
		FROM steps
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []ir.Step{}
	for rows.Next() {
		var (
			step   ir.Step
			args   string
			result string
		)
		if err := rows.Scan(&step.RunID, &step.Seq, &step.Depth, &step.Op, &step.Clause, &args, &result); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		if step.Args, err = unmarshalTerms(args); err != nil {
			return nil, err
		}
		if step.Result, err = unmarshalTerm(result); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// CountSteps counts the steps of a run, restricted to op unless op is "".
func (s *Store) CountSteps(ctx context.Context, runID, op string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM steps
		WHERE run_id = ? AND (? = '' OR op = ?)
	`, runID, op, op).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count steps: %w", err)
	}
	return n, nil
}

// MaxStepDepth returns the deepest step of a run, or 0 if it has none.
func (s *Store) MaxStepDepth(ctx context.Context, runID string) (int, error) {
	var depth int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(depth), 0) FROM steps WHERE run_id = ?
	`, runID).Scan(&depth)
	if err != nil {
		return 0, fmt.Errorf("max step depth: %w", err)
	}
	return depth, nil
}

// ClauseUsed reports whether any step of a run applied the clause.
func (s *Store) ClauseUsed(ctx context.Context, runID, clause string) (bool, error) {
	var used bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM steps WHERE run_id = ? AND clause = ?)
	`, runID, clause).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("clause used: %w", err)
	}
	return used, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (ir.Run, error) {
	var (
		run    ir.Run
		result sql.NullString
	)
	if err := sc.Scan(&run.ID, &run.Expr, &result, &run.ErrorCode, &run.Error, &run.Steps, &run.MaxDepth); err != nil {
		return ir.Run{}, err
	}
	if result.Valid {
		t, err := unmarshalTerm(result.String)
		if err != nil {
			return ir.Run{}, err
		}
		run.Result = t
	}
	return run, nil
}
