package engine

import "github.com/roach88/peano/internal/ir"

// maxArity is the largest operand count of any rule (If).
const maxArity = 3

// queryKey identifies a query by operation and operand identity.
//
// Operands compare as interface values: Zero, True and False compare by
// variant, *Succ by pointer. Structurally equal successors built separately
// are distinct keys, which is enough to catch a rule that hands its own
// operands back to itself unchanged.
type queryKey struct {
	op   Op
	args [maxArity]ir.Term
}

func keyOf(op Op, args []ir.Term) queryKey {
	k := queryKey{op: op}
	copy(k.args[:], args)
	return k
}

// CycleDetector tracks the queries currently on a run's derivation stack.
//
// A cycle occurs when a query is re-entered with the same operands before
// its first resolution finished. Resolution is referentially transparent,
// so the inner call would make exactly the same choices as the outer one
// and recurse forever.
//
// Example cycle:
//
//	Mod(Three, Zero) -> Minus(Three, Zero) = Three, LessThan(Three, Zero) = False
//	-> Mod(Three, Zero) (again!) <- CYCLE DETECTED
//
// CRITICAL DISTINCTION from memoization:
//   - Memo: "Has this query finished before?" (shared across runs, optional)
//   - Cycle detection: "Is this query still in progress?" (per run)
//
// A CycleDetector belongs to a single run and is not safe for concurrent use.
type CycleDetector struct {
	active map[queryKey]int // key -> number of active frames
}

// NewCycleDetector creates a new cycle detector.
func NewCycleDetector() *CycleDetector {
	return &CycleDetector{
		active: make(map[queryKey]int),
	}
}

// WouldCycle reports whether the query is already active.
func (c *CycleDetector) WouldCycle(op Op, args []ir.Term) bool {
	return c.active[keyOf(op, args)] > 0
}

// Enter marks the query active.
//
// This should be called immediately after WouldCycle returns false,
// before the clause body runs.
func (c *CycleDetector) Enter(op Op, args []ir.Term) {
	c.active[keyOf(op, args)]++
}

// Leave marks the query finished.
func (c *CycleDetector) Leave(op Op, args []ir.Term) {
	k := keyOf(op, args)
	if c.active[k] <= 1 {
		delete(c.active, k)
		return
	}
	c.active[k]--
}

// ActiveSize returns the number of distinct active queries.
//
// Used for testing and introspection.
func (c *CycleDetector) ActiveSize() int {
	return len(c.active)
}
