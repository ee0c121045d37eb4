package engine

import (
	"errors"
	"fmt"
)

// DepthEnforcer tracks derivation depth for one run and enforces the
// configured maximum.
//
// Depth counts nested rule applications: a query resolved directly by the
// caller has depth 1, each sub-query one more. It rises and falls with the
// recursion, so it bounds stack use, not total work.
//
// CRITICAL DISTINCTION from the step quota:
//   - Depth limit: catches deep recursion (Fact on large inputs, Mod by Zero)
//   - Step quota: catches wide derivations (many shallow rule applications)
type DepthEnforcer struct {
	limit   int // Maximum allowed depth
	current int // Current depth
	deepest int // Deepest depth reached so far
}

// NewDepthEnforcer creates a depth enforcer with the given limit.
func NewDepthEnforcer(limit int) *DepthEnforcer {
	return &DepthEnforcer{limit: limit}
}

// Enter descends one level and validates against the limit.
//
// Returns DepthExceededError if the new depth is over the limit. The level
// is still entered; callers Leave in a defer either way.
func (d *DepthEnforcer) Enter(runID string, op Op) error {
	d.current++
	if d.current > d.deepest {
		d.deepest = d.current
	}
	if d.current > d.limit {
		return &DepthExceededError{
			RunID: runID,
			Op:    op,
			Depth: d.current,
			Limit: d.limit,
		}
	}
	return nil
}

// Leave ascends one level.
func (d *DepthEnforcer) Leave() {
	d.current--
}

// Current returns the current depth.
func (d *DepthEnforcer) Current() int {
	return d.current
}

// Deepest returns the deepest depth reached.
// Used for run statistics and logging.
func (d *DepthEnforcer) Deepest() int {
	return d.deepest
}

// Limit returns the maximum depth.
func (d *DepthEnforcer) Limit() int {
	return d.limit
}

// DepthExceededError is returned when a derivation nests deeper than the
// configured maximum. It terminates the whole run.
type DepthExceededError struct {
	RunID string // The run that exceeded the limit
	Op    Op     // The operation being entered
	Depth int    // Depth that was reached
	Limit int    // Maximum allowed depth
}

// Error implements the error interface.
func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("run %s exceeded max derivation depth in %s: %d > %d limit: %v",
		e.RunID, e.Op, e.Depth, e.Limit, ErrNotTerminated)
}

// Is reports whether target is ErrNotTerminated.
func (e *DepthExceededError) Is(target error) bool {
	return target == ErrNotTerminated
}

// Code returns the error category used by CLI and scenario output.
func (e *DepthExceededError) Code() string {
	return "DEPTH_EXCEEDED"
}

// IsDepthExceededError returns true if the error is a DepthExceededError.
// Uses errors.As to handle wrapped errors.
func IsDepthExceededError(err error) bool {
	var de *DepthExceededError
	return errors.As(err, &de)
}

// QuotaEnforcer counts rule applications in a run and enforces a
// maximum. A limit of 0 disables the quota.
type QuotaEnforcer struct {
	maxSteps int64 // Maximum allowed steps; 0 means unlimited
	current  int64 // Current step count
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int64) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check increments the step counter and validates against the limit.
//
// Returns StepsExceededError if the quota is exceeded.
// Called once per rule application, before the clause body runs.
func (q *QuotaEnforcer) Check(runID string) error {
	q.current++
	if q.maxSteps > 0 && q.current > q.maxSteps {
		return &StepsExceededError{
			RunID: runID,
			Steps: q.current,
			Limit: q.maxSteps,
		}
	}
	return nil
}

// Reset resets the step counter to 0.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int64 {
	return q.current
}

// MaxSteps returns the maximum steps limit.
func (q *QuotaEnforcer) MaxSteps() int64 {
	return q.maxSteps
}

// StepsExceededError is returned when a run exceeds the max steps quota.
type StepsExceededError struct {
	RunID string // The run that exceeded the quota
	Steps int64  // Number of steps taken
	Limit int64  // Maximum allowed steps
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("run %s exceeded max steps quota: %d steps > %d limit: %v",
		e.RunID, e.Steps, e.Limit, ErrNotTerminated)
}

// Is reports whether target is ErrNotTerminated.
func (e *StepsExceededError) Is(target error) bool {
	return target == ErrNotTerminated
}

// Code returns the error category used by CLI and scenario output.
func (e *StepsExceededError) Code() string {
	return "STEPS_EXCEEDED"
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
