package expr

import (
	"github.com/roach88/peano/internal/engine"
	"github.com/roach88/peano/internal/ir"
)

// Result is the outcome of evaluating one expression.
type Result struct {
	Expr     string  // Canonical rendering of the expression
	Term     ir.Term // Resolved term
	RunID    string
	Steps    int64 // Rule applications in the run
	MaxDepth int   // Deepest derivation in the run
}

// Value reifies the result term.
func (r *Result) Value() any {
	return ir.Eval(r.Term)
}

// Eval reduces n inside run, innermost first.
func Eval(run *engine.Run, n Node) (ir.Term, error) {
	switch n := n.(type) {
	case *Const:
		return n.Term, nil
	case *Literal:
		return ir.FromUint(n.Value), nil
	case *SuccOf:
		x, err := Eval(run, n.X)
		if err != nil {
			return nil, err
		}
		return ir.NewSucc(x.(ir.Nat)), nil
	case *Call:
		args := make([]ir.Term, len(n.Args))
		for i, a := range n.Args {
			t, err := Eval(run, a)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return run.Resolve(n.Op, args...)
	default:
		panic("expr.Eval: unknown node type")
	}
}

// Evaluate parses src and evaluates it as one run of eng.
func Evaluate(eng *engine.Engine, src string, opts ...engine.RunOption) (*Result, error) {
	n, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return EvaluateNode(eng, n, opts...)
}

// EvaluateNode evaluates a parsed expression as one run of eng.
//
// On failure the returned Result still carries the run ID and counters,
// with a nil Term.
func EvaluateNode(eng *engine.Engine, n Node, opts ...engine.RunOption) (*Result, error) {
	run := eng.NewRun(opts...)
	t, err := Eval(run, n)
	res := &Result{
		Expr:     n.String(),
		RunID:    run.ID(),
		Steps:    run.Steps(),
		MaxDepth: run.MaxDepth(),
	}
	if err != nil {
		return res, err
	}
	res.Term = t
	return res, nil
}
