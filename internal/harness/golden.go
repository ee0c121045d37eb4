package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/peano/internal/ir"
)

// Snapshot renders a result as canonical JSON for golden comparison.
//
// Each case contributes its expression, run ID, outcome and the steps read
// back from the derivation log. Step counts and error messages are left out:
// the first depends on quota bookkeeping, the second on wording.
func Snapshot(result *Result) ([]byte, error) {
	cases := make([]any, len(result.Cases))
	for i, cr := range result.Cases {
		steps := make([]any, len(cr.Steps))
		for j, s := range cr.Steps {
			steps[j] = s.TraceMap()
		}

		m := map[string]any{
			"expr":  cr.Expr,
			"steps": steps,
		}
		if cr.RunID != "" {
			m["run_id"] = cr.RunID
		}
		if cr.ErrorCode != "" {
			m["error"] = cr.ErrorCode
		} else {
			m["result"] = cr.Value
		}
		cases[i] = m
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario_name": result.Name,
		"cases":         cases,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass. Test failure (via
// goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
