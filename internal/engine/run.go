package engine

import (
	"log/slog"
	"strconv"

	"github.com/roach88/peano/internal/ir"
)

// Run is one evaluation: a sequence of queries sharing a run ID, a logical
// clock, the depth and step budgets, and an optional tracer.
//
// The first resource failure ends the run. Later queries return the same
// error, so nothing derived after a failure is ever observable.
//
// A Run is not safe for concurrent use.
type Run struct {
	eng    *Engine
	id     string
	clock  *Clock
	depth  *DepthEnforcer
	quota  *QuotaEnforcer
	cycles *CycleDetector // nil when cycle detection is off
	tracer Tracer
	logger *slog.Logger
	err    error
}

// RunOption configures a single run.
type RunOption func(*Run)

// RecordTo sends every resolved step of the run to t.
func RecordTo(t Tracer) RunOption {
	return func(r *Run) {
		r.tracer = t
	}
}

// WithRunID fixes the run ID instead of drawing one from the generator.
func WithRunID(id string) RunOption {
	return func(r *Run) {
		r.id = id
	}
}

// NewRun opens a run against the engine's configuration.
func (e *Engine) NewRun(opts ...RunOption) *Run {
	r := &Run{
		eng:   e,
		clock: NewClock(),
		depth: NewDepthEnforcer(e.maxDepth),
		quota: NewQuotaEnforcer(e.maxSteps),
	}
	if e.detectCycles {
		r.cycles = NewCycleDetector()
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.id == "" {
		r.id = e.runIDs.Generate()
	}
	r.logger = e.logger.With("run_id", r.id)
	return r
}

// ID returns the run ID.
func (r *Run) ID() string {
	return r.id
}

// Steps returns the number of rule applications so far.
func (r *Run) Steps() int64 {
	return r.quota.Current()
}

// MaxDepth returns the deepest derivation reached so far.
func (r *Run) MaxDepth() int {
	return r.depth.Deepest()
}

// Err returns the error that ended the run, or nil.
func (r *Run) Err() error {
	return r.err
}

// Resolve resolves op applied to args.
func (r *Run) Resolve(op Op, args ...ir.Term) (ir.Term, error) {
	return r.ResolveQuery(Query{Op: op, Args: args})
}

// ResolveQuery validates q and resolves it to a result term.
//
// Malformed queries return a RuntimeError and leave the run usable.
// Resource failures (depth, steps, divergence) end the run.
func (r *Run) ResolveQuery(q Query) (ir.Term, error) {
	if r.err != nil {
		return nil, r.err
	}
	rl, ok := rules[q.Op]
	if !ok {
		return nil, newRuntimeError(ErrCodeUnknownOperation, r.id, q.Op, "no rule for %q", q.Op)
	}
	if err := rl.validate(r.id, q.Args); err != nil {
		return nil, err
	}

	args := make([]ir.Term, len(q.Args))
	copy(args, q.Args)

	t, err := r.apply(q.Op, args)
	if err != nil {
		r.err = err
		r.eng.metrics.observeQuery(outcomeOf(err), r.depth.Deepest())
		r.logger.Debug("query failed",
			"op", q.Op,
			"code", ErrorCode(err),
			"steps", r.quota.Current(),
			"depth", r.depth.Deepest())
		return nil, err
	}

	r.eng.metrics.observeQuery(outcomeOK, r.depth.Deepest())
	r.logger.Debug("query resolved",
		"op", q.Op,
		"steps", r.quota.Current(),
		"depth", r.depth.Deepest())
	return t, nil
}

// apply resolves one query without validation. Clause bodies call it for
// their sub-queries, which are well-formed by construction.
func (r *Run) apply(op Op, args []ir.Term) (ir.Term, error) {
	if memo := r.eng.memo; memo != nil {
		if t, ok := memo.get(op, args); ok {
			r.eng.metrics.memoHit()
			return t, nil
		}
	}

	if err := r.depth.Enter(r.id, op); err != nil {
		r.depth.Leave()
		return nil, err
	}
	defer r.depth.Leave()
	depth := r.depth.Current()

	if err := r.quota.Check(r.id); err != nil {
		return nil, err
	}

	if r.cycles != nil {
		if r.cycles.WouldCycle(op, args) {
			return nil, &DivergenceError{
				RunID: r.id,
				Op:    op,
				Args:  describeArgs(args),
				Depth: depth,
			}
		}
		r.cycles.Enter(op, args)
		defer r.cycles.Leave(op, args)
	}

	rl := rules[op]
	c := rl.match(args)
	if c == nil {
		return nil, newRuntimeError(ErrCodeNoMatchingClause, r.id, op,
			"no clause of %s accepts %v", op, describeArgs(args))
	}
	r.eng.metrics.ruleApplied(op)

	result, err := c.body(r, args)
	if err != nil {
		return nil, err
	}

	seq := r.clock.Next()
	if r.tracer != nil {
		r.tracer.Step(ir.Step{
			RunID:  r.id,
			Seq:    seq,
			Depth:  depth,
			Op:     string(op),
			Clause: c.name,
			Args:   args,
			Result: result,
		})
	}
	if memo := r.eng.memo; memo != nil {
		memo.put(op, args, result)
	}
	return result, nil
}

func (r *Run) nat(op Op, args ...ir.Term) (ir.Nat, error) {
	t, err := r.apply(op, args)
	if err != nil {
		return nil, err
	}
	return t.(ir.Nat), nil
}

func (r *Run) boolean(op Op, args ...ir.Term) (ir.Bool, error) {
	t, err := r.apply(op, args)
	if err != nil {
		return nil, err
	}
	return t.(ir.Bool), nil
}

// describeArgs renders operands compactly for error messages.
// Naturals render as decimals since their structural form grows linearly.
func describeArgs(args []ir.Term) []string {
	out := make([]string, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case ir.Nat:
			out[i] = strconv.FormatUint(ir.EvalNat(v), 10)
		case ir.Bool:
			out[i] = v.String()
		default:
			out[i] = "<nil>"
		}
	}
	return out
}
