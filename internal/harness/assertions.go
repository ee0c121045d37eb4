package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/peano/internal/engine"
	"github.com/roach88/peano/internal/ir"
	"github.com/roach88/peano/internal/store"
)

// AssertionContext provides what assertions need to query the log.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
	Cases []CaseResult
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string    // Assertion type for categorization
	Case     int       // Index of the case under test
	Expected string    // Human-readable expected outcome
	Actual   string    // Human-readable actual outcome
	Steps    []ir.Step // Derivation of the case, for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s (case %d)\n", e.Type, e.Case)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Steps) > 0 {
		fmt.Fprintf(&buf, "\nDerivation:\n")
		for _, s := range e.Steps {
			fmt.Fprintf(&buf, "  [%d] %s%s %s\n", s.Seq, strings.Repeat("  ", s.Depth-1), s.Op, s.Clause)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	errs := []string{}
	for i, a := range assertions {
		if err := evaluateAssertion(a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(a Assertion, actx *AssertionContext) error {
	if a.Case < 0 || a.Case >= len(actx.Cases) {
		return fmt.Errorf("case %d out of range", a.Case)
	}
	cr := actx.Cases[a.Case]
	if cr.RunID == "" {
		return fmt.Errorf("case %d has no run: %s", a.Case, cr.Error)
	}

	switch a.Type {
	case AssertOpCount:
		return assertOpCount(actx, cr, a)
	case AssertMaxDepth:
		return assertMaxDepth(actx, cr, a)
	case AssertClauseUsed:
		return assertClause(actx, cr, a, true)
	case AssertClauseUnused:
		return assertClause(actx, cr, a, false)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertOpCount checks that op was resolved exactly Count times.
func assertOpCount(actx *AssertionContext, cr CaseResult, a Assertion) error {
	op, err := engine.ParseOp(a.Op)
	if err != nil {
		return err
	}
	n, err := actx.Store.CountSteps(actx.Ctx, cr.RunID, string(op))
	if err != nil {
		return err
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertOpCount,
			Case:     a.Case,
			Expected: fmt.Sprintf("%d resolutions of %s", a.Count, op),
			Actual:   fmt.Sprintf("%d resolutions", n),
			Steps:    cr.Steps,
		}
	}
	return nil
}

// assertMaxDepth checks that no recorded step is deeper than Limit.
func assertMaxDepth(actx *AssertionContext, cr CaseResult, a Assertion) error {
	depth, err := actx.Store.MaxStepDepth(actx.Ctx, cr.RunID)
	if err != nil {
		return err
	}
	if depth > a.Limit {
		return &AssertionError{
			Type:     AssertMaxDepth,
			Case:     a.Case,
			Expected: fmt.Sprintf("depth <= %d", a.Limit),
			Actual:   fmt.Sprintf("depth %d", depth),
			Steps:    cr.Steps,
		}
	}
	return nil
}

// assertClause checks whether the clause appears in the derivation.
func assertClause(actx *AssertionContext, cr CaseResult, a Assertion, want bool) error {
	used, err := actx.Store.ClauseUsed(actx.Ctx, cr.RunID, a.Clause)
	if err != nil {
		return err
	}
	if used != want {
		expected := fmt.Sprintf("clause %s applied", a.Clause)
		actual := "never applied"
		if !want {
			expected = fmt.Sprintf("clause %s never applied", a.Clause)
			actual = "applied"
		}
		return &AssertionError{
			Type:     a.Type,
			Case:     a.Case,
			Expected: expected,
			Actual:   actual,
			Steps:    cr.Steps,
		}
	}
	return nil
}
