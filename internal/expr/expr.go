package expr

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/parser"
	"cuelang.org/go/cue/token"

	"github.com/roach88/peano/internal/engine"
	"github.com/roach88/peano/internal/ir"
)

// MaxLiteral is the largest integer literal accepted. Literals build unary
// terms, so their size is linear in their value.
const MaxLiteral = 1 << 20

// Node is a checked expression tree node.
type Node interface {
	node()
	// Pos returns the position of the node in the source.
	Pos() token.Pos
	// Kind returns the family of the node's value.
	Kind() ir.Kind
	// String renders the node in canonical syntax.
	String() string
}

// Const is a named constant such as Four or True.
type Const struct {
	Name string
	Term ir.Term
	pos  token.Pos
}

// Literal is a non-negative integer literal.
type Literal struct {
	Value uint64
	pos   token.Pos
}

// SuccOf is the Succ(x) constructor.
type SuccOf struct {
	X   Node
	pos token.Pos
}

// Call applies an engine operation to argument expressions.
type Call struct {
	Op   engine.Op
	Args []Node
	kind ir.Kind
	pos  token.Pos
}

func (*Const) node()   {}
func (*Literal) node() {}
func (*SuccOf) node()  {}
func (*Call) node()    {}

func (n *Const) Pos() token.Pos   { return n.pos }
func (n *Literal) Pos() token.Pos { return n.pos }
func (n *SuccOf) Pos() token.Pos  { return n.pos }
func (n *Call) Pos() token.Pos    { return n.pos }

func (n *Const) Kind() ir.Kind   { return ir.KindOf(n.Term) }
func (n *Literal) Kind() ir.Kind { return ir.KindNat }
func (n *SuccOf) Kind() ir.Kind  { return ir.KindNat }
func (n *Call) Kind() ir.Kind    { return n.kind }

func (n *Const) String() string   { return n.Name }
func (n *Literal) String() string { return strconv.FormatUint(n.Value, 10) }
func (n *SuccOf) String() string  { return "Succ(" + n.X.String() + ")" }

func (n *Call) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Op, strings.Join(parts, ", "))
}

// Parse parses and checks src.
//
// Returns a *CompileError with the line and column of the first problem.
func Parse(src string) (Node, error) {
	x, err := parser.ParseExpr("expr", src)
	if err != nil {
		return nil, formatCUEError(err)
	}
	return convert(x)
}

// MustParse is like Parse but panics on error. For tests and fixed inputs.
func MustParse(src string) Node {
	n, err := Parse(src)
	if err != nil {
		panic(fmt.Sprintf("expr.MustParse(%q): %v", src, err))
	}
	return n
}

func convert(x ast.Expr) (Node, error) {
	switch x := x.(type) {
	case *ast.ParenExpr:
		return convert(x.X)

	case *ast.Ident:
		t, ok := ir.Constants[x.Name]
		if !ok {
			return nil, newCompileError(ErrUnknownName, x.Pos(), "unknown constant %q", x.Name)
		}
		return &Const{Name: x.Name, Term: t, pos: x.Pos()}, nil

	case *ast.BasicLit:
		return convertLiteral(x)

	case *ast.CallExpr:
		return convertCall(x)

	default:
		return nil, newCompileError(ErrUnsupportedNode, x.Pos(), "unsupported expression %T", x)
	}
}

func convertLiteral(x *ast.BasicLit) (Node, error) {
	switch x.Kind {
	case token.TRUE:
		return &Const{Name: "True", Term: ir.True{}, pos: x.Pos()}, nil
	case token.FALSE:
		return &Const{Name: "False", Term: ir.False{}, pos: x.Pos()}, nil
	case token.INT:
		digits := strings.ReplaceAll(x.Value, "_", "")
		v, err := strconv.ParseUint(digits, 0, 64)
		if err != nil {
			return nil, newCompileError(ErrLiteral, x.Pos(), "invalid integer literal %s", x.Value)
		}
		if v > MaxLiteral {
			return nil, newCompileError(ErrLiteral, x.Pos(), "literal %d exceeds maximum %d", v, MaxLiteral)
		}
		return &Literal{Value: v, pos: x.Pos()}, nil
	default:
		return nil, newCompileError(ErrLiteral, x.Pos(), "unsupported literal %s", x.Value)
	}
}

func convertCall(x *ast.CallExpr) (Node, error) {
	fn, ok := x.Fun.(*ast.Ident)
	if !ok {
		return nil, newCompileError(ErrUnsupportedNode, x.Pos(), "callee must be an operation name")
	}

	args := make([]Node, len(x.Args))
	for i, a := range x.Args {
		n, err := convert(a)
		if err != nil {
			return nil, err
		}
		args[i] = n
	}

	if fn.Name == "Succ" {
		if len(args) != 1 {
			return nil, newCompileError(ErrArity, x.Pos(), "Succ takes 1 argument, got %d", len(args))
		}
		if args[0].Kind() != ir.KindNat {
			return nil, newCompileError(ErrKind, args[0].Pos(), "Succ argument must be nat, got %s", args[0].Kind())
		}
		return &SuccOf{X: args[0], pos: x.Pos()}, nil
	}

	op, err := engine.ParseOp(fn.Name)
	if err != nil {
		return nil, newCompileError(ErrUnknownOp, fn.Pos(), "unknown operation %q", fn.Name)
	}
	params, result, _ := engine.Signature(op)
	if len(args) != len(params) {
		return nil, newCompileError(ErrArity, x.Pos(), "%s takes %d arguments, got %d", op, len(params), len(args))
	}
	for i, want := range params {
		if want != ir.KindInvalid && args[i].Kind() != want {
			return nil, newCompileError(ErrKind, args[i].Pos(),
				"%s argument %d must be %s, got %s", op, i+1, want, args[i].Kind())
		}
	}
	if result == ir.KindInvalid {
		// If: both branches decide the result family
		if args[1].Kind() != args[2].Kind() {
			return nil, newCompileError(ErrKind, args[2].Pos(),
				"%s branches differ: %s and %s", op, args[1].Kind(), args[2].Kind())
		}
		result = args[1].Kind()
	}
	return &Call{Op: op, Args: args, kind: result, pos: x.Pos()}, nil
}
