package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/roach88/peano/internal/config"
	"github.com/roach88/peano/internal/engine"
)

// Scenario defines a batch of expressions with expected outcomes and
// assertions over their recorded derivations.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunID is the prefix for the scenario's run IDs. Defaults to Name.
	RunID string `yaml:"run_id,omitempty"`

	// Engine overrides the default engine configuration.
	Engine *EngineOverrides `yaml:"engine,omitempty"`

	// Cases are evaluated in order, one run each.
	Cases []Case `yaml:"cases"`

	// Assertions validate the recorded derivations. Optional.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// EngineOverrides sets individual engine options. Nil fields keep the
// default from config.DefaultConfig.
type EngineOverrides struct {
	MaxDepth     *int   `yaml:"max_depth,omitempty"`
	MaxSteps     *int64 `yaml:"max_steps,omitempty"`
	Memoize      *bool  `yaml:"memoize,omitempty"`
	DetectCycles *bool  `yaml:"detect_cycles,omitempty"`
}

// Apply writes the set overrides onto cfg.
func (o *EngineOverrides) Apply(cfg *config.EngineConfig) {
	if o == nil {
		return
	}
	if o.MaxDepth != nil {
		cfg.MaxDepth = *o.MaxDepth
	}
	if o.MaxSteps != nil {
		cfg.MaxSteps = *o.MaxSteps
	}
	if o.Memoize != nil {
		cfg.Memoize = *o.Memoize
	}
	if o.DetectCycles != nil {
		cfg.DetectCycles = *o.DetectCycles
	}
}

// Case is one expression and its expected outcome.
// Exactly one of Expect and ExpectError must be set.
type Case struct {
	// Expr is an expression in the peano expression language.
	Expr string `yaml:"expr"`

	// Expect is the reified result: a non-negative integer or a boolean.
	Expect any `yaml:"expect,omitempty"`

	// ExpectError names the expected failure, see ErrorKinds.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Error kinds accepted by expect_error. Any engine error code, in lower
// case, is accepted as well (e.g. kind_mismatch).
const (
	ErrorDivergent     = "divergent"
	ErrorDepthExceeded = "depth_exceeded"
	ErrorStepsExceeded = "steps_exceeded"
	ErrorNotTerminated = "not_terminated" // any of the three above
	ErrorCompile       = "compile"        // the expression did not parse
)

// Assertion validates the recorded derivation of one case.
type Assertion struct {
	// Type is one of op_count, max_depth, clause_used, clause_unused.
	Type string `yaml:"type"`

	// Case is the index of the case the assertion applies to.
	Case int `yaml:"case"`

	// Op is the operation name (used by op_count).
	Op string `yaml:"op,omitempty"`

	// Count is the expected number of resolutions (used by op_count).
	Count int `yaml:"count,omitempty"`

	// Limit is the maximum allowed depth (used by max_depth).
	Limit int `yaml:"limit,omitempty"`

	// Clause is the clause name (used by clause_used, clause_unused).
	Clause string `yaml:"clause,omitempty"`
}

// Assertion type constants.
const (
	AssertOpCount      = "op_count"
	AssertMaxDepth     = "max_depth"
	AssertClauseUsed   = "clause_used"
	AssertClauseUnused = "clause_unused"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Discover finds scenario files under dir, sorted by path.
//
// filter is a doublestar glob matched against the file name without
// extension, or against the slash-separated path relative to dir when
// the pattern contains a slash ("nested/**"). Empty matches everything.
func Discover(dir, filter string) ([]string, error) {
	if filter != "" && !doublestar.ValidatePattern(filter) {
		return nil, fmt.Errorf("invalid filter pattern: %q", filter)
	}

	files := []string{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			if strings.Contains(filter, "/") {
				rel, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}
				name = strings.TrimSuffix(filepath.ToSlash(rel), ext)
			}
			if matched, _ := doublestar.Match(filter, name); !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	if s.Engine != nil {
		if s.Engine.MaxDepth != nil && *s.Engine.MaxDepth < 1 {
			return fmt.Errorf("engine.max_depth must be at least 1")
		}
		if s.Engine.MaxSteps != nil && *s.Engine.MaxSteps < 0 {
			return fmt.Errorf("engine.max_steps must not be negative")
		}
	}

	for i, c := range s.Cases {
		if err := validateCase(i, &c); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Cases)); err != nil {
			return err
		}
	}

	return nil
}

func validateCase(index int, c *Case) error {
	if strings.TrimSpace(c.Expr) == "" {
		return fmt.Errorf("cases[%d]: expr is required", index)
	}

	switch {
	case c.Expect == nil && c.ExpectError == "":
		return fmt.Errorf("cases[%d]: one of expect or expect_error is required", index)
	case c.Expect != nil && c.ExpectError != "":
		return fmt.Errorf("cases[%d]: expect and expect_error are mutually exclusive", index)
	case c.Expect != nil:
		if _, err := expectedValue(c.Expect); err != nil {
			return fmt.Errorf("cases[%d].expect: %w", index, err)
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, numCases int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Case < 0 || a.Case >= numCases {
		return fmt.Errorf("assertions[%d]: case %d out of range [0, %d)", index, a.Case, numCases)
	}

	switch a.Type {
	case AssertOpCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for op_count", index)
		}
		if _, err := engine.ParseOp(a.Op); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for op_count", index)
		}
	case AssertMaxDepth:
		if a.Limit < 1 {
			return fmt.Errorf("assertions[%d]: limit must be at least 1 for max_depth", index)
		}
	case AssertClauseUsed, AssertClauseUnused:
		if a.Clause == "" {
			return fmt.Errorf("assertions[%d]: clause is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// expectedValue normalizes a YAML-decoded expectation to the reifier's
// types: uint64 or bool.
func expectedValue(v any) (any, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case int:
		if v < 0 {
			return nil, fmt.Errorf("naturals cannot be negative: %d", v)
		}
		return uint64(v), nil
	case int64:
		if v < 0 {
			return nil, fmt.Errorf("naturals cannot be negative: %d", v)
		}
		return uint64(v), nil
	case uint64:
		return v, nil
	case float64:
		// Floats are rejected even when integral, the expression language has none
		return nil, fmt.Errorf("floats are not terms: %v", v)
	default:
		return nil, fmt.Errorf("expected a non-negative integer or boolean, got %T", v)
	}
}
