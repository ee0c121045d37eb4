package engine

import (
	"errors"
	"fmt"
)

// ErrNotTerminated is the outcome of a derivation that could not reach a
// base case within its bounds. Every resource error matches it via errors.Is.
var ErrNotTerminated = errors.New("evaluation did not terminate within bounds")

// RuntimeError represents a malformed query detected during resolution.
//
// Runtime errors include:
//   - Unknown operation: the op name has no rule
//   - Arity mismatch: wrong number of operands
//   - Kind mismatch: an operand is from the wrong term family
//   - No matching clause: no clause pattern accepted the operands
//
// The typed Engine helpers cannot produce these; they surface through
// Run.ResolveQuery and the expression language.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run.
	RunID string

	// Op is the operation being resolved.
	Op Op

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownOperation indicates the op has no rule.
	ErrCodeUnknownOperation RuntimeErrorCode = "UNKNOWN_OPERATION"

	// ErrCodeArityMismatch indicates the wrong number of operands.
	ErrCodeArityMismatch RuntimeErrorCode = "ARITY_MISMATCH"

	// ErrCodeKindMismatch indicates an operand of the wrong family.
	ErrCodeKindMismatch RuntimeErrorCode = "KIND_MISMATCH"

	// ErrCodeNoMatchingClause indicates no clause accepted the operands.
	ErrCodeNoMatchingClause RuntimeErrorCode = "NO_MATCHING_CLAUSE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.RunID != "" && e.Op != "" {
		return fmt.Sprintf("%s: %s (run=%s, op=%s)", e.Code, e.Message, e.RunID, e.Op)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// DivergenceError is returned when a query re-enters itself with the same
// operands while still on the derivation stack. Such a derivation can never
// reach a base case; Mod with a zero divisor is the known instance.
type DivergenceError struct {
	RunID string
	Op    Op
	Args  []string // Operand renderings, for diagnostics
	Depth int      // Depth at which the repeat was seen
}

// Error implements the error interface.
func (e *DivergenceError) Error() string {
	return fmt.Sprintf("run %s: %s%v re-entered itself at depth %d: %v",
		e.RunID, e.Op, e.Args, e.Depth, ErrNotTerminated)
}

// Is reports whether target is ErrNotTerminated.
func (e *DivergenceError) Is(target error) bool {
	return target == ErrNotTerminated
}

// Code returns the error category used by CLI and scenario output.
func (e *DivergenceError) Code() string {
	return "DIVERGENT"
}

// IsNotTerminated returns true if the evaluation ran out of bounds:
// depth exceeded, steps exceeded, or divergence.
func IsNotTerminated(err error) bool {
	return errors.Is(err, ErrNotTerminated)
}

// IsDivergenceError returns true if the error is a DivergenceError.
// Uses errors.As to handle wrapped errors.
func IsDivergenceError(err error) bool {
	var de *DivergenceError
	return errors.As(err, &de)
}

// IsRuntimeError returns true if err is a RuntimeError with the given code.
func IsRuntimeError(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// ErrorCode returns a stable category string for any engine error,
// or "" if err did not come from the engine.
func ErrorCode(err error) string {
	var (
		re *RuntimeError
		de *DepthExceededError
		se *StepsExceededError
		ve *DivergenceError
	)
	switch {
	case errors.As(err, &de):
		return de.Code()
	case errors.As(err, &se):
		return se.Code()
	case errors.As(err, &ve):
		return ve.Code()
	case errors.As(err, &re):
		return string(re.Code)
	default:
		return ""
	}
}

func newRuntimeError(code RuntimeErrorCode, runID string, op Op, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		RunID:   runID,
		Op:      op,
	}
}
