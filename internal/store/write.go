package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/peano/internal/ir"
)

// WriteRun inserts a run record into the store.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
//
// The run is appended after every run already in the log.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) error {
	var result sql.NullString
	if run.Result != nil {
		data, err := marshalTerm(run.Result)
		if err != nil {
			return fmt.Errorf("write run: %w", err)
		}
		result = sql.NullString{String: data, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, expr, expr_hash, result, error_code, error, steps, max_depth, engine_version, trace_version)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Expr,
		ir.ExprHash(run.Expr),
		result,
		run.ErrorCode,
		run.Error,
		run.Steps,
		run.MaxDepth,
		ir.EngineVersion,
		ir.TraceVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteSteps inserts the steps of a run in one transaction.
// Step IDs are content addressed, so rewriting a trace is a no-op.
//
// Note: The run referenced by each step must exist (foreign key constraint).
func (s *Store) WriteSteps(ctx context.Context, steps []ir.Step) error {
	if len(steps) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write steps: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO steps (id, run_id, seq, depth, op, clause, args, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write steps: prepare: %w", err)
	}
	defer stmt.Close()

	for _, step := range steps {
		id, err := ir.StepID(step)
		if err != nil {
			return fmt.Errorf("write steps: seq %d: %w", step.Seq, err)
		}
		args, err := marshalTerms(step.Args)
		if err != nil {
			return fmt.Errorf("write steps: seq %d: %w", step.Seq, err)
		}
		result, err := marshalTerm(step.Result)
		if err != nil {
			return fmt.Errorf("write steps: seq %d: %w", step.Seq, err)
		}
		if _, err := stmt.ExecContext(ctx, id, step.RunID, step.Seq, step.Depth,
			step.Op, step.Clause, args, result); err != nil {
			return fmt.Errorf("write steps: seq %d: %w", step.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write steps: commit: %w", err)
	}
	return nil
}

// WriteTrace writes a run and its steps.
func (s *Store) WriteTrace(ctx context.Context, run ir.Run, steps []ir.Step) error {
	if err := s.WriteRun(ctx, run); err != nil {
		return err
	}
	return s.WriteSteps(ctx, steps)
}
