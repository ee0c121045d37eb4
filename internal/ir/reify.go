package ir

import "fmt"

// Eval reifies a resolved term into its native value:
// uint64 for naturals, bool for booleans.
//
// This is the only crossing point from the symbolic domain to Go values.
func Eval(t Term) any {
	switch v := t.(type) {
	case Nat:
		return EvalNat(v)
	case Bool:
		return EvalBool(v)
	default:
		panic(fmt.Sprintf("ir.Eval: unknown term type %T", t))
	}
}

// EvalNat counts the Succ layers of n.
func EvalNat(n Nat) uint64 {
	var count uint64
	for {
		s, ok := n.(*Succ)
		if !ok {
			return count
		}
		count++
		n = s.inner
	}
}

// EvalBool maps True to true and False to false.
func EvalBool(b Bool) bool {
	_, ok := b.(True)
	return ok
}
