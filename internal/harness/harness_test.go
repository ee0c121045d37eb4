package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_TestdataScenariosPass(t *testing.T) {
	files, err := Discover("testdata/scenarios", "")
	require.NoError(t, err)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
			assert.Len(t, result.Cases, len(s.Cases))
		})
	}
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Cases:       []Case{{Expr: "Plus(Two, Two)", Expect: 4}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass)
	assert.Equal(t, "minimal", result.Name)
	require.Len(t, result.Cases, 1)

	cr := result.Cases[0]
	assert.Equal(t, "minimal-001", cr.RunID, "run ID prefix defaults to the scenario name")
	assert.Equal(t, uint64(4), cr.Value)
	assert.Equal(t, int64(3), cr.StepCount)
	assert.Equal(t, 3, cr.MaxDepth)
	assert.Len(t, cr.Steps, 3, "steps are read back from the log")
}

func TestRun_SequentialRunIDs(t *testing.T) {
	scenario := &Scenario{
		Name:        "ids",
		Description: "run IDs follow case order",
		RunID:       "seq",
		Cases: []Case{
			{Expr: "One", Expect: 1},
			{Expr: "True", Expect: true},
			{Expr: "Not(True)", Expect: false},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	var ids []string
	for _, cr := range result.Cases {
		ids = append(ids, cr.RunID)
	}
	assert.Equal(t, []string{"seq-001", "seq-002", "seq-003"}, ids)

	// Constants resolve without any rule application
	assert.Empty(t, result.Cases[0].Steps)
	assert.NotNil(t, result.Cases[0].Steps)
}

func TestRun_WrongValueFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong",
		Description: "expectation mismatch",
		Cases: []Case{
			{Expr: "Plus(Two, Two)", Expect: 5},
			{Expr: "Equals(One, Two)", Expect: true},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "cases[0] Plus(Two, Two): expected 5, got 4")
	assert.Contains(t, result.Errors[1], "expected true, got false")
}

func TestRun_ErrorExpectations(t *testing.T) {
	off := false
	depth := 30

	tests := []struct {
		name      string
		overrides *EngineOverrides
		c         Case
		pass      bool
	}{
		{"divergent", nil, Case{Expr: "Mod(Two, Zero)", ExpectError: ErrorDivergent}, true},
		{"divergent is not_terminated", nil, Case{Expr: "Mod(Two, Zero)", ExpectError: ErrorNotTerminated}, true},
		{"divergent is not depth_exceeded", nil, Case{Expr: "Mod(Two, Zero)", ExpectError: ErrorDepthExceeded}, false},
		{"no cycle check exceeds depth",
			&EngineOverrides{DetectCycles: &off, MaxDepth: &depth},
			Case{Expr: "Mod(Two, Zero)", ExpectError: ErrorDepthExceeded}, true},
		{"compile error", nil, Case{Expr: "Times(True, One)", ExpectError: ErrorCompile}, true},
		{"compile error is not not_terminated", nil, Case{Expr: "Times(True, One)", ExpectError: ErrorNotTerminated}, false},
		{"error expected but value produced", nil, Case{Expr: "Mod(Two, One)", ExpectError: ErrorDivergent}, false},
		{"value expected but error produced", nil, Case{Expr: "Mod(Two, Zero)", Expect: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := &Scenario{
				Name:        "errors",
				Description: tt.name,
				Engine:      tt.overrides,
				Cases:       []Case{tt.c},
			}

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.Equal(t, tt.pass, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_CompileErrorHasNoRun(t *testing.T) {
	scenario := &Scenario{
		Name:        "compile",
		Description: "parse failure",
		Cases:       []Case{{Expr: "Plus(One", ExpectError: ErrorCompile}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	cr := result.Cases[0]
	assert.Empty(t, cr.RunID)
	assert.Equal(t, ErrorCodeCompile, cr.ErrorCode)
	assert.Contains(t, cr.Error, "[E001]")
}

func TestRun_StepQuota(t *testing.T) {
	maxSteps := int64(3)
	scenario := &Scenario{
		Name:        "quota",
		Description: "step quota",
		Engine:      &EngineOverrides{MaxSteps: &maxSteps},
		Cases: []Case{
			{Expr: "Plus(Two, Two)", Expect: 4},
			{Expr: "Plus(Five, Five)", ExpectError: ErrorStepsExceeded},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "STEPS_EXCEEDED", result.Cases[1].ErrorCode)
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/arithmetic.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := Snapshot(first)
	require.NoError(t, err)
	b, err := Snapshot(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
