package engine

import "github.com/roach88/peano/internal/ir"

// Select returns then when cond is True and els when it is False.
//
// It is the If rule lifted to arbitrary Go values, for callers that
// choose between non-term results (labels, handlers) with a derived
// boolean. Both alternatives are already evaluated by the time Select
// runs, matching the If rule.
func Select[T any](cond ir.Bool, then, els T) T {
	switch cond.(type) {
	case ir.True:
		return then
	default:
		return els
	}
}
