// Package engine resolves Peano queries by ordered clause matching.
//
// Every operation (If, Equals, LessThan, Not, AndAlso, OrElse, Plus, Minus,
// Pred, Times, Mod, Fact, Fib) is a table of clauses. A clause guards each
// operand with a shape pattern (Zero, Succ(_), True, False or _) and, when
// it matches, produces the result either directly or by resolving smaller
// sub-queries. The first matching clause wins, and base cases are declared
// first, so dispatch is always on the most specific shape.
//
// RESOLUTION:
//
// A Run resolves queries depth first. Before a clause body runs, the run:
// 1. Enters one level of depth and checks it against the maximum
// 2. Counts one step against the optional quota
// 3. Checks that the same query is not already on the stack
//
// After the body returns, the step is stamped from the run's logical clock
// and handed to the tracer, so traces list sub-derivations before the rule
// that needed them.
//
// Conditionals are ordinary rules. Mod and Fib derive both alternatives
// before selecting one, so a Zero divisor sends Mod back into the same
// query. The cycle check reports that as a DivergenceError; with the check
// off it runs into the depth limit. Both match ErrNotTerminated.
//
// CRITICAL PATTERNS:
//
// Logical Clock
// Steps are stamped with a per-run monotonic seq counter from Clock.Next().
// NEVER use wall-clock timestamps for ordering.
//
// Fail Whole
// A resource error ends the run. No partial result escapes, and later
// queries on the same run return the original error.
package engine
