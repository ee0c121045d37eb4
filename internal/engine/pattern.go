package engine

import "github.com/roach88/peano/internal/ir"

// Pattern is a shape test on one operand.
// Clauses match operands by their outermost constructor only.
type Pattern int

const (
	// Any matches every term.
	Any Pattern = iota
	// IsZero matches Zero.
	IsZero
	// IsSucc matches Succ(_).
	IsSucc
	// IsTrue matches True.
	IsTrue
	// IsFalse matches False.
	IsFalse
)

func (p Pattern) String() string {
	switch p {
	case Any:
		return "_"
	case IsZero:
		return "Zero"
	case IsSucc:
		return "Succ(_)"
	case IsTrue:
		return "True"
	case IsFalse:
		return "False"
	default:
		return "?"
	}
}

// Match reports whether t has the shape p describes.
func (p Pattern) Match(t ir.Term) bool {
	switch p {
	case Any:
		return t != nil
	case IsZero:
		_, ok := t.(ir.Zero)
		return ok
	case IsSucc:
		_, ok := t.(*ir.Succ)
		return ok
	case IsTrue:
		_, ok := t.(ir.True)
		return ok
	case IsFalse:
		_, ok := t.(ir.False)
		return ok
	default:
		return false
	}
}

// matchAll checks operands against patterns position by position.
// Returns false on a length mismatch.
func matchAll(patterns []Pattern, args []ir.Term) bool {
	if len(patterns) != len(args) {
		return false
	}
	for i, p := range patterns {
		if !p.Match(args[i]) {
			return false
		}
	}
	return true
}
