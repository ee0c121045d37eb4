package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/peano/internal/config"
	"github.com/roach88/peano/internal/engine"
	"github.com/roach88/peano/internal/expr"
	"github.com/roach88/peano/internal/ir"
	"github.com/roach88/peano/internal/store"
	"github.com/roach88/peano/internal/testutil"
)

// Harness is the scenario execution engine.
// It evaluates cases with sequential run IDs and records every derivation
// in a derivation log.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
//  1. Create fresh in-memory database
//  2. Build an engine from the default config plus scenario overrides
//  3. Evaluate each case as one run and append it to the log
//  4. Compare outcomes with expectations
//  5. Evaluate assertions against the log
//
// The returned error reports harness failures (the store, not the
// scenario); scenario failures are in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context for store access.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(store.Memory)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	cfg := config.DefaultConfig().Engine
	scenario.Engine.Apply(&cfg)

	prefix := scenario.RunID
	if prefix == "" {
		prefix = scenario.Name
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	opts := append(cfg.Options(),
		engine.WithLogger(logger),
		engine.WithRunIDGenerator(testutil.NewSequentialRunIDs(prefix)),
	)

	h := &Harness{
		store:  st,
		engine: engine.New(opts...),
		logger: logger,
	}

	result := NewResult(scenario.Name)
	for i, c := range scenario.Cases {
		cr, err := h.evaluate(ctx, i, c)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
		result.Cases = append(result.Cases, cr)
		if msg := checkExpectation(c, cr); msg != "" {
			result.AddError(msg)
		}
	}

	actx := &AssertionContext{Store: st, Ctx: ctx, Cases: result.Cases}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// evaluate runs one case, writes it to the log and reads the steps back.
func (h *Harness) evaluate(ctx context.Context, index int, c Case) (CaseResult, error) {
	cr := CaseResult{Index: index, Expr: c.Expr}

	node, err := expr.Parse(c.Expr)
	if err != nil {
		cr.ErrorCode = ErrorCodeCompile
		cr.Error = err.Error()
		cr.err = err
		cr.Steps = []ir.Step{}
		return cr, nil
	}

	rec := &engine.Recorder{}
	res, evalErr := expr.EvaluateNode(h.engine, node, engine.RecordTo(rec))

	cr.RunID = res.RunID
	cr.StepCount = res.Steps
	cr.MaxDepth = res.MaxDepth

	run := ir.Run{
		ID:       res.RunID,
		Expr:     c.Expr,
		Result:   res.Term,
		Steps:    res.Steps,
		MaxDepth: res.MaxDepth,
	}
	if evalErr != nil {
		cr.ErrorCode = engine.ErrorCode(evalErr)
		cr.Error = evalErr.Error()
		cr.err = evalErr
		run.ErrorCode = cr.ErrorCode
		run.Error = cr.Error
	} else {
		cr.Value = res.Value()
	}

	if err := h.store.WriteTrace(ctx, run, rec.Steps()); err != nil {
		return CaseResult{}, err
	}

	steps, err := h.store.ReadSteps(ctx, res.RunID)
	if err != nil {
		return CaseResult{}, err
	}
	cr.Steps = steps

	h.logger.Info("case evaluated",
		"case", index,
		"run_id", cr.RunID,
		"steps", cr.StepCount,
		"error_code", cr.ErrorCode,
	)
	return cr, nil
}

// checkExpectation returns a failure message, or "" if the case matched.
func checkExpectation(c Case, cr CaseResult) string {
	label := fmt.Sprintf("cases[%d] %s", cr.Index, c.Expr)

	if c.ExpectError != "" {
		if cr.ErrorCode == "" {
			return fmt.Sprintf("%s: expected error %s, got value %v", label, c.ExpectError, cr.Value)
		}
		if !errorMatches(c.ExpectError, cr) {
			return fmt.Sprintf("%s: expected error %s, got %s: %s", label, c.ExpectError, cr.ErrorCode, cr.Error)
		}
		return ""
	}

	if cr.ErrorCode != "" {
		return fmt.Sprintf("%s: expected %v, got error %s: %s", label, c.Expect, cr.ErrorCode, cr.Error)
	}
	want, err := expectedValue(c.Expect)
	if err != nil {
		return fmt.Sprintf("%s: %v", label, err)
	}
	if want != cr.Value {
		return fmt.Sprintf("%s: expected %v, got %v", label, want, cr.Value)
	}
	return ""
}

// errorMatches reports whether a failed case satisfies an expect_error kind.
func errorMatches(kind string, cr CaseResult) bool {
	if kind == ErrorNotTerminated {
		return errors.Is(cr.err, engine.ErrNotTerminated)
	}
	return strings.EqualFold(kind, cr.ErrorCode)
}
