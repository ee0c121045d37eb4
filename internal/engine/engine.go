package engine

import (
	"log/slog"

	"github.com/roach88/peano/internal/ir"
)

// DefaultMaxDepth is the default maximum derivation depth per run.
// Fact(Seven) stays under it; Fact(Eight) does not.
const DefaultMaxDepth = 10000

// MaxDepthCeiling is the largest accepted depth limit. Resolution recurses
// on the goroutine stack, and a derivation this deep stays well inside the
// runtime's maximum stack size, so the depth limit always fires first.
const MaxDepthCeiling = 100000

// RunIDGenerator generates unique run IDs.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type RunIDGenerator interface {
	Generate() string
}

// Engine resolves operation queries by ordered clause matching.
//
// An Engine holds configuration only (plus the optional memo table), so it
// may be shared between goroutines. Each resolution happens inside a Run,
// which owns the depth, step and cycle bookkeeping and is single-threaded.
type Engine struct {
	maxDepth     int
	maxSteps     int64
	detectCycles bool
	memo         *memoTable
	logger       *slog.Logger
	metrics      *Metrics
	runIDs       RunIDGenerator
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithMaxDepth sets the maximum derivation depth per run.
//
// Default: 10000 (DefaultMaxDepth). Values below 1 are ignored and values
// above MaxDepthCeiling are clamped to it.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = min(n, MaxDepthCeiling)
		}
	}
}

// WithMaxSteps sets the maximum number of rule applications per run.
//
// Default: 0, meaning unlimited. Use WithMaxSteps(10) for testing quota
// enforcement.
func WithMaxSteps(n int64) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithMemo enables the memo table, keyed by operation and operand identity
// and shared by every run of the engine.
func WithMemo() Option {
	return func(e *Engine) {
		e.memo = newMemoTable()
	}
}

// WithCycleDetection turns detection of re-entered queries on or off.
// When off, a divergent derivation runs into the depth limit instead.
func WithCycleDetection(on bool) Option {
	return func(e *Engine) {
		e.detectCycles = on
	}
}

// WithLogger sets the logger used for run diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records query outcomes and rule applications in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithRunIDGenerator sets the source of run IDs.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.runIDs = g
		}
	}
}

// New creates an Engine. Cycle detection is on by default.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxDepth:     DefaultMaxDepth,
		detectCycles: true,
		logger:       slog.Default(),
		runIDs:       UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxDepth returns the configured depth limit.
func (e *Engine) MaxDepth() int {
	return e.maxDepth
}

// MaxSteps returns the configured step quota (0 = unlimited).
func (e *Engine) MaxSteps() int64 {
	return e.maxSteps
}

// MemoSize returns the number of memoized queries, or 0 without a memo.
func (e *Engine) MemoSize() int {
	if e.memo == nil {
		return 0
	}
	return e.memo.size()
}

// If selects then when c is True and els when it is False.
func (e *Engine) If(c ir.Bool, then, els ir.Term) (ir.Term, error) {
	return e.NewRun().Resolve(OpIf, c, then, els)
}

// Equals derives structural equality of two naturals.
func (e *Engine) Equals(a, b ir.Nat) (ir.Bool, error) {
	return e.resolveBool(OpEquals, a, b)
}

// LessThan derives a < b.
func (e *Engine) LessThan(a, b ir.Nat) (ir.Bool, error) {
	return e.resolveBool(OpLessThan, a, b)
}

// Not derives the negation of a.
func (e *Engine) Not(a ir.Bool) (ir.Bool, error) {
	return e.resolveBool(OpNot, a)
}

// AndAlso derives the conjunction of a and b. Both are already terms,
// so nothing is skipped.
func (e *Engine) AndAlso(a, b ir.Bool) (ir.Bool, error) {
	return e.resolveBool(OpAndAlso, a, b)
}

// OrElse derives the disjunction of a and b.
func (e *Engine) OrElse(a, b ir.Bool) (ir.Bool, error) {
	return e.resolveBool(OpOrElse, a, b)
}

// Plus derives a + b.
func (e *Engine) Plus(a, b ir.Nat) (ir.Nat, error) {
	return e.resolveNat(OpPlus, a, b)
}

// Minus derives a - b, saturating at Zero.
func (e *Engine) Minus(a, b ir.Nat) (ir.Nat, error) {
	return e.resolveNat(OpMinus, a, b)
}

// Pred derives a - 1, saturating at Zero.
func (e *Engine) Pred(a ir.Nat) (ir.Nat, error) {
	return e.resolveNat(OpPred, a)
}

// Times derives a * b.
func (e *Engine) Times(a, b ir.Nat) (ir.Nat, error) {
	return e.resolveNat(OpTimes, a, b)
}

// Mod derives a mod b. A Zero divisor never terminates and fails with an
// error matching ErrNotTerminated.
func (e *Engine) Mod(a, b ir.Nat) (ir.Nat, error) {
	return e.resolveNat(OpMod, a, b)
}

// Fact derives a!.
func (e *Engine) Fact(a ir.Nat) (ir.Nat, error) {
	return e.resolveNat(OpFact, a)
}

// Fib derives the a-th Fibonacci number, with Fib(Zero) = Zero.
func (e *Engine) Fib(a ir.Nat) (ir.Nat, error) {
	return e.resolveNat(OpFib, a)
}

func (e *Engine) resolveNat(op Op, args ...ir.Term) (ir.Nat, error) {
	t, err := e.NewRun().Resolve(op, args...)
	if err != nil {
		return nil, err
	}
	return t.(ir.Nat), nil
}

func (e *Engine) resolveBool(op Op, args ...ir.Term) (ir.Bool, error) {
	t, err := e.NewRun().Resolve(op, args...)
	if err != nil {
		return nil, err
	}
	return t.(ir.Bool), nil
}
