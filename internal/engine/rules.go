package engine

import (
	"fmt"

	"github.com/roach88/peano/internal/ir"
)

// clause is one ordered alternative of a rule: a shape pattern per operand
// and the body that produces the result once the patterns match.
type clause struct {
	name     string
	patterns []Pattern
	body     func(r *Run, args []ir.Term) (ir.Term, error)
}

// rule is the ordered clause table of one operation.
//
// Clauses are tried in declaration order and the first match wins, so
// base cases are declared before the recursive cases they overlap with.
type rule struct {
	op      Op
	params  []ir.Kind // Operand families; KindInvalid accepts either
	result  ir.Kind   // Result family; KindInvalid follows the If branches
	check   func(args []ir.Term) error
	clauses []clause
}

// rules is populated in init because clause bodies resolve sub-queries
// through the table.
var rules map[Op]*rule

func init() {
	rules = buildRules()
}

func buildRules() map[Op]*rule {
	nat2 := []ir.Kind{ir.KindNat, ir.KindNat}
	bool2 := []ir.Kind{ir.KindBool, ir.KindBool}

	table := []*rule{
		{
			op:     OpIf,
			params: []ir.Kind{ir.KindBool, ir.KindInvalid, ir.KindInvalid},
			check:  sameBranchKinds,
			clauses: []clause{
				{"if/true", []Pattern{IsTrue, Any, Any}, operand(1)},
				{"if/false", []Pattern{IsFalse, Any, Any}, operand(2)},
			},
		},
		{
			op:     OpEquals,
			result: ir.KindBool,
			params: nat2,
			clauses: []clause{
				{"equals/zero-zero", []Pattern{IsZero, IsZero}, constant(ir.True{})},
				{"equals/zero-succ", []Pattern{IsZero, IsSucc}, constant(ir.False{})},
				{"equals/succ-zero", []Pattern{IsSucc, IsZero}, constant(ir.False{})},
				{"equals/succ-succ", []Pattern{IsSucc, IsSucc}, peel(OpEquals)},
			},
		},
		{
			op:     OpLessThan,
			result: ir.KindBool,
			params: nat2,
			clauses: []clause{
				{"lessthan/zero-zero", []Pattern{IsZero, IsZero}, constant(ir.False{})},
				{"lessthan/zero-succ", []Pattern{IsZero, IsSucc}, constant(ir.True{})},
				{"lessthan/succ-zero", []Pattern{IsSucc, IsZero}, constant(ir.False{})},
				{"lessthan/succ-succ", []Pattern{IsSucc, IsSucc}, peel(OpLessThan)},
			},
		},
		{
			op:     OpNot,
			result: ir.KindBool,
			params: []ir.Kind{ir.KindBool},
			clauses: []clause{
				{"not/true", []Pattern{IsTrue}, constant(ir.False{})},
				{"not/false", []Pattern{IsFalse}, constant(ir.True{})},
			},
		},
		{
			op:     OpAndAlso,
			result: ir.KindBool,
			params: bool2,
			clauses: []clause{
				{"andalso/false", []Pattern{IsFalse, Any}, constant(ir.False{})},
				{"andalso/true", []Pattern{IsTrue, Any}, operand(1)},
			},
		},
		{
			op:     OpOrElse,
			result: ir.KindBool,
			params: bool2,
			clauses: []clause{
				{"orelse/true", []Pattern{IsTrue, Any}, constant(ir.True{})},
				{"orelse/false", []Pattern{IsFalse, Any}, operand(1)},
			},
		},
		{
			op:     OpPlus,
			result: ir.KindNat,
			params: nat2,
			clauses: []clause{
				{"plus/zero", []Pattern{IsZero, Any}, operand(1)},
				{"plus/succ", []Pattern{IsSucc, Any}, plusSucc},
			},
		},
		{
			op:     OpPred,
			result: ir.KindNat,
			params: []ir.Kind{ir.KindNat},
			clauses: []clause{
				{"pred/zero", []Pattern{IsZero}, constant(ir.Zero{})},
				{"pred/succ", []Pattern{IsSucc}, predSucc},
			},
		},
		{
			op:     OpMinus,
			result: ir.KindNat,
			params: nat2,
			clauses: []clause{
				{"minus/zero", []Pattern{Any, IsZero}, operand(0)},
				{"minus/succ", []Pattern{Any, IsSucc}, minusSucc},
			},
		},
		{
			op:     OpTimes,
			result: ir.KindNat,
			params: nat2,
			clauses: []clause{
				{"times/zero", []Pattern{IsZero, Any}, constant(ir.Zero{})},
				{"times/succ", []Pattern{IsSucc, Any}, timesSucc},
			},
		},
		{
			op:     OpMod,
			result: ir.KindNat,
			params: nat2,
			clauses: []clause{
				{"mod/zero", []Pattern{IsZero, Any}, constant(ir.Zero{})},
				{"mod/succ", []Pattern{IsSucc, Any}, modSucc},
			},
		},
		{
			op:     OpFact,
			result: ir.KindNat,
			params: []ir.Kind{ir.KindNat},
			clauses: []clause{
				{"fact/zero", []Pattern{IsZero}, constant(ir.One)},
				{"fact/succ", []Pattern{IsSucc}, factSucc},
			},
		},
		{
			op:     OpFib,
			result: ir.KindNat,
			params: []ir.Kind{ir.KindNat},
			clauses: []clause{
				{"fib/zero", []Pattern{IsZero}, constant(ir.Zero{})},
				{"fib/succ", []Pattern{IsSucc}, fibSucc},
			},
		},
	}

	m := make(map[Op]*rule, len(table))
	for _, rl := range table {
		m[rl.op] = rl
	}
	return m
}

// match returns the first clause whose patterns accept args, or nil.
func (rl *rule) match(args []ir.Term) *clause {
	for i := range rl.clauses {
		if matchAll(rl.clauses[i].patterns, args) {
			return &rl.clauses[i]
		}
	}
	return nil
}

// validate checks operand count and families before a query enters
// resolution. Sub-queries issued by clause bodies skip it.
func (rl *rule) validate(runID string, args []ir.Term) error {
	if len(args) != len(rl.params) {
		return newRuntimeError(ErrCodeArityMismatch, runID, rl.op,
			"expected %d operands, got %d", len(rl.params), len(args))
	}
	for i, want := range rl.params {
		got := ir.KindOf(args[i])
		if got == ir.KindInvalid {
			return newRuntimeError(ErrCodeKindMismatch, runID, rl.op, "operand %d is nil", i)
		}
		if want != ir.KindInvalid && got != want {
			return newRuntimeError(ErrCodeKindMismatch, runID, rl.op,
				"operand %d: expected %s, got %s", i, want, got)
		}
	}
	if rl.check != nil {
		if err := rl.check(args); err != nil {
			return newRuntimeError(ErrCodeKindMismatch, runID, rl.op, "%v", err)
		}
	}
	return nil
}

// Signature returns the operand families and result family of op.
// KindInvalid marks a position that accepts either family; for If the
// result has the family of its branches.
func Signature(op Op) (params []ir.Kind, result ir.Kind, ok bool) {
	rl, ok := rules[op]
	if !ok {
		return nil, ir.KindInvalid, false
	}
	params = make([]ir.Kind, len(rl.params))
	copy(params, rl.params)
	return params, rl.result, true
}

// ClauseNames returns the clause names of op in match order.
// Returns nil for an unknown op.
func ClauseNames(op Op) []string {
	rl, ok := rules[op]
	if !ok {
		return nil
	}
	names := make([]string, len(rl.clauses))
	for i, c := range rl.clauses {
		names[i] = c.name
	}
	return names
}

func sameBranchKinds(args []ir.Term) error {
	then, els := ir.KindOf(args[1]), ir.KindOf(args[2])
	if then != els {
		return fmt.Errorf("branches differ in kind: %s and %s", then, els)
	}
	return nil
}

// constant yields t regardless of the operands.
func constant(t ir.Term) func(*Run, []ir.Term) (ir.Term, error) {
	return func(*Run, []ir.Term) (ir.Term, error) {
		return t, nil
	}
}

// operand yields the i-th operand unchanged.
func operand(i int) func(*Run, []ir.Term) (ir.Term, error) {
	return func(_ *Run, args []ir.Term) (ir.Term, error) {
		return args[i], nil
	}
}

// peel strips one Succ from both operands and resolves op on the rest.
func peel(op Op) func(*Run, []ir.Term) (ir.Term, error) {
	return func(r *Run, args []ir.Term) (ir.Term, error) {
		return r.apply(op, []ir.Term{inner(args[0]), inner(args[1])})
	}
}

func inner(t ir.Term) ir.Nat {
	return t.(*ir.Succ).Inner()
}

// Plus(Succ(a), b) = Succ(Plus(a, b))
func plusSucc(r *Run, args []ir.Term) (ir.Term, error) {
	sum, err := r.nat(OpPlus, inner(args[0]), args[1])
	if err != nil {
		return nil, err
	}
	return ir.NewSucc(sum), nil
}

// Pred(Succ(a)) = a
func predSucc(_ *Run, args []ir.Term) (ir.Term, error) {
	return inner(args[0]), nil
}

// Minus(a, Succ(b)) = Pred(Minus(a, b))
func minusSucc(r *Run, args []ir.Term) (ir.Term, error) {
	diff, err := r.nat(OpMinus, args[0], inner(args[1]))
	if err != nil {
		return nil, err
	}
	return r.apply(OpPred, []ir.Term{diff})
}

// Times(Succ(a), b) = Plus(Times(a, b), b)
func timesSucc(r *Run, args []ir.Term) (ir.Term, error) {
	prod, err := r.nat(OpTimes, inner(args[0]), args[1])
	if err != nil {
		return nil, err
	}
	return r.apply(OpPlus, []ir.Term{prod, args[1]})
}

// Fact(Succ(a)) = Times(Fact(a), Succ(a))
func factSucc(r *Run, args []ir.Term) (ir.Term, error) {
	f, err := r.nat(OpFact, inner(args[0]))
	if err != nil {
		return nil, err
	}
	return r.apply(OpTimes, []ir.Term{f, args[0]})
}

// Mod(x, b) for x = Succ(_) is If(LessThan(x, b), x, Mod(Minus(x, b), b)).
//
// The remainder branch is derived before the selection. With b = Zero,
// Minus hands x back unchanged and the branch re-enters Mod(x, Zero).
func modSucc(r *Run, args []ir.Term) (ir.Term, error) {
	x, b := args[0], args[1]
	rest, err := r.nat(OpMinus, x, b)
	if err != nil {
		return nil, err
	}
	less, err := r.boolean(OpLessThan, x, b)
	if err != nil {
		return nil, err
	}
	rem, err := r.nat(OpMod, rest, b)
	if err != nil {
		return nil, err
	}
	return r.apply(OpIf, []ir.Term{less, x, rem})
}

// Fib(Succ(t)) is If(Equals(t, Zero), One, Plus(Fib(Pred(t)), Fib(Minus(t, Two)))).
//
// Both branches are derived before the selection; for t = Zero the sum
// branch reduces to Plus(Fib(Zero), Fib(Zero)) and terminates.
func fibSucc(r *Run, args []ir.Term) (ir.Term, error) {
	t := inner(args[0])
	first, err := r.boolean(OpEquals, t, ir.Zero{})
	if err != nil {
		return nil, err
	}
	p, err := r.nat(OpPred, t)
	if err != nil {
		return nil, err
	}
	fp, err := r.nat(OpFib, p)
	if err != nil {
		return nil, err
	}
	m, err := r.nat(OpMinus, t, ir.Two)
	if err != nil {
		return nil, err
	}
	fm, err := r.nat(OpFib, m)
	if err != nil {
		return nil, err
	}
	sum, err := r.nat(OpPlus, fp, fm)
	if err != nil {
		return nil, err
	}
	return r.apply(OpIf, []ir.Term{first, ir.One, sum})
}
