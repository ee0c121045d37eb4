package harness

import "github.com/roach88/peano/internal/ir"

// ErrorCodeCompile is the error code of a case whose expression did not parse.
const ErrorCodeCompile = "COMPILE"

// CaseResult is the recorded outcome of one case.
type CaseResult struct {
	Index     int       `json:"index"`
	Expr      string    `json:"expr"`
	RunID     string    `json:"run_id,omitempty"` // empty when the expression did not parse
	Value     any       `json:"value,omitempty"`  // uint64 or bool; nil on failure
	ErrorCode string    `json:"error_code,omitempty"`
	Error     string    `json:"error,omitempty"`
	Steps     []ir.Step `json:"-"` // read back from the derivation log
	StepCount int64     `json:"step_count"`
	MaxDepth  int       `json:"max_depth"`

	err error
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass indicates overall test success.
	// True if every case matched its expectation and every assertion held.
	Pass bool `json:"pass"`

	// Cases holds one entry per scenario case, in order.
	Cases []CaseResult `json:"cases"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
