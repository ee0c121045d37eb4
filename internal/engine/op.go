package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/peano/internal/ir"
)

// Op names an operation with a rule in the engine.
type Op string

const (
	OpIf       Op = "If"
	OpEquals   Op = "Equals"
	OpLessThan Op = "LessThan"
	OpNot      Op = "Not"
	OpAndAlso  Op = "AndAlso"
	OpOrElse   Op = "OrElse"
	OpPlus     Op = "Plus"
	OpMinus    Op = "Minus"
	OpPred     Op = "Pred"
	OpTimes    Op = "Times"
	OpMod      Op = "Mod"
	OpFact     Op = "Fact"
	OpFib      Op = "Fib"
)

// allOps lists every operation in declaration order.
var allOps = []Op{
	OpIf, OpEquals, OpLessThan,
	OpNot, OpAndAlso, OpOrElse,
	OpPlus, OpMinus, OpPred, OpTimes, OpMod, OpFact, OpFib,
}

// Ops returns every operation in declaration order.
func Ops() []Op {
	out := make([]Op, len(allOps))
	copy(out, allOps)
	return out
}

// ParseOp resolves an operation name, ignoring case.
func ParseOp(name string) (Op, error) {
	for _, op := range allOps {
		if strings.EqualFold(string(op), name) {
			return op, nil
		}
	}
	return "", &RuntimeError{
		Code:    ErrCodeUnknownOperation,
		Message: fmt.Sprintf("unknown operation %q", name),
	}
}

// Arity returns the number of operands op takes, or 0 for an unknown op.
func (o Op) Arity() int {
	rl, ok := rules[o]
	if !ok {
		return 0
	}
	return len(rl.params)
}

// Query is an operation applied to operand terms.
type Query struct {
	Op   Op
	Args []ir.Term
}

// NewQuery builds a query.
func NewQuery(op Op, args ...ir.Term) Query {
	return Query{Op: op, Args: args}
}

// String renders the query as Op(arg, ...).
func (q Query) String() string {
	parts := make([]string, len(q.Args))
	for i, a := range q.Args {
		if a == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", q.Op, strings.Join(parts, ", "))
}
