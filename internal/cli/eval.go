package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/peano/internal/engine"
	"github.com/roach88/peano/internal/expr"
	"github.com/roach88/peano/internal/ir"
	"github.com/roach88/peano/internal/store"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	EngineFlags
	ShowTerm bool
	Trace    bool
	Stats    bool
	Database string
}

// EvalResult is the data payload of eval and repl output.
type EvalResult struct {
	Expr     string           `json:"expr"`
	RunID    string           `json:"run_id"`
	Value    any              `json:"value,omitempty"`
	Term     string           `json:"term,omitempty"`
	Steps    int64            `json:"steps"`
	MaxDepth int              `json:"max_depth"`
	Trace    []TraceStep      `json:"trace,omitempty"`
	Rules    map[string]int64 `json:"rules,omitempty"`
	MemoHits int64            `json:"memo_hits,omitempty"`
}

// TraceStep is one derivation step in JSON output.
type TraceStep struct {
	Seq    int64  `json:"seq"`
	Depth  int    `json:"depth"`
	Op     string `json:"op"`
	Clause string `json:"clause"`
	Args   []any  `json:"args"`
	Result any    `json:"result"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <expr>",
		Short: "Evaluate an expression",
		Long: `Evaluate one expression as a single run and print its value.

Expressions are calls of If, Equals, LessThan, Not, AndAlso, OrElse, Plus,
Minus, Pred, Times, Mod, Fact and Fib over the constants Zero..Ten, True,
False, Succ(x) and non-negative integer literals.

Exit codes:
  0 - Evaluated to a value
  1 - Evaluation did not terminate within bounds, or failed at runtime
  2 - Command error (the expression does not parse, bad flags, etc.)

Examples:
  peano eval "Plus(Two, Three)"
  peano eval "Fact(Five)" --stats
  peano eval "Mod(Seven, Three)" --trace
  peano eval "Mod(Three, Zero)" --no-cycle-check --max-depth 200
  peano eval "Fib(Eight)" --db ./peano.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	opts.EngineFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.ShowTerm, "show-term", false, "also print the structural term")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print every derivation step")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "print run statistics and rule counts")
	cmd.Flags().StringVar(&opts.Database, "db", "", "append the run to a SQLite derivation log")

	return cmd
}

func runEval(opts *EvalOptions, src string, cmd *cobra.Command) error {
	cfg, logger := opts.loaded()
	out := opts.formatter(cmd)

	engCfg, err := opts.EngineFlags.resolve(cmd, cfg.Engine, out)
	if err != nil {
		return err
	}

	s := &session{
		showTerm: opts.ShowTerm,
		trace:    opts.Trace,
		dbPath:   opts.Database,
		logger:   logger,
	}
	if s.dbPath == "" {
		s.dbPath = cfg.Store.Path
	}
	if opts.Stats {
		s.metrics = engine.NewMetrics()
	}
	s.eng = newEngine(engCfg, logger, s.metrics)

	result, err := s.eval(cmd.Context(), src)
	var ce *expr.CompileError
	var se *storeError
	switch {
	case errors.As(err, &ce):
		_ = out.Error(ce.Code, compileMessage(ce), nil)
		return WrapExitError(ExitCommandError, "invalid expression", err)
	case errors.As(err, &se):
		_ = out.Error(CodeStore, se.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write derivation log", err)
	case err != nil:
		code := ErrorCode(err, CodeCommand)
		if opts.Format == "json" {
			_ = out.JSON(CLIResponse{
				Status: "error",
				Error:  &CLIError{Code: code, Message: err.Error(), Details: result},
				RunID:  result.RunID,
			})
		} else {
			writeEvalText(cmd.OutOrStdout(), *result, opts.Stats, engCfg.Memoize)
			_ = out.Error(code, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "evaluation failed", err)
	}

	if opts.Format == "json" {
		return out.JSON(CLIResponse{Status: "ok", Data: result, RunID: result.RunID})
	}
	writeEvalText(cmd.OutOrStdout(), *result, opts.Stats, engCfg.Memoize)
	return nil
}

// session evaluates expressions against one engine, so a memo table and
// metrics accumulate across evaluations.
type session struct {
	eng      *engine.Engine
	metrics  *engine.Metrics // nil unless statistics are wanted
	dbPath   string          // empty disables the derivation log
	showTerm bool
	trace    bool
	logger   *slog.Logger
}

// storeError marks a failure to append to the derivation log.
type storeError struct{ err error }

func (e *storeError) Error() string { return e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

// eval parses and evaluates src as one run.
//
// A parse error returns a nil result. An evaluation error returns the
// partial result (run ID, counters and the steps derived before the
// failure) alongside the error.
func (s *session) eval(ctx context.Context, src string) (*EvalResult, error) {
	node, err := expr.Parse(src)
	if err != nil {
		return nil, err
	}

	rec := &engine.Recorder{}
	res, evalErr := expr.EvaluateNode(s.eng, node, engine.RecordTo(rec))

	if s.dbPath != "" {
		if err := appendRun(ctx, s.dbPath, res, evalErr, rec.Steps()); err != nil {
			return nil, &storeError{err: err}
		}
		s.logger.Debug("run appended", "db", s.dbPath, "run_id", res.RunID)
	}

	result := &EvalResult{
		Expr:     res.Expr,
		RunID:    res.RunID,
		Steps:    res.Steps,
		MaxDepth: res.MaxDepth,
	}
	if evalErr == nil {
		result.Value = res.Value()
		if s.showTerm {
			result.Term = res.Term.String()
		}
	}
	if s.trace {
		result.Trace = traceSteps(rec.Steps())
	}
	if s.metrics != nil {
		result.Rules, result.MemoHits, err = ruleCounts(s.metrics)
		if err != nil {
			return result, err
		}
	}
	return result, evalErr
}

// compileMessage renders a parse error without its code, which the
// formatter prints separately.
func compileMessage(ce *expr.CompileError) string {
	if ce.Pos.IsValid() {
		return fmt.Sprintf("%d:%d: %s", ce.Pos.Line(), ce.Pos.Column(), ce.Message)
	}
	return ce.Message
}

// appendRun writes one run and its steps to the log at path.
func appendRun(ctx context.Context, path string, res *expr.Result, evalErr error, steps []ir.Step) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	run := ir.Run{
		ID:       res.RunID,
		Expr:     res.Expr,
		Result:   res.Term,
		Steps:    res.Steps,
		MaxDepth: res.MaxDepth,
	}
	if evalErr != nil {
		run.ErrorCode = engine.ErrorCode(evalErr)
		run.Error = evalErr.Error()
	}
	return st.WriteTrace(ctx, run, steps)
}

// writeEvalText prints the human-readable form of an evaluation.
// The value comes last so scripts can take the final line.
func writeEvalText(w io.Writer, r EvalResult, stats, memo bool) {
	for _, s := range r.Trace {
		fmt.Fprintln(w, formatTraceStep(s))
	}
	if stats {
		fmt.Fprintf(w, "run:       %s\n", r.RunID)
		fmt.Fprintf(w, "steps:     %d\n", r.Steps)
		fmt.Fprintf(w, "max depth: %d\n", r.MaxDepth)
		if memo {
			fmt.Fprintf(w, "memo hits: %d\n", r.MemoHits)
		}
		if len(r.Rules) > 0 {
			fmt.Fprintf(w, "rules:     %s\n", formatRuleCounts(r.Rules))
		}
	}
	if r.Term != "" {
		fmt.Fprintf(w, "term:      %s\n", r.Term)
	}
	if r.Value != nil {
		fmt.Fprintln(w, r.Value)
	}
}

func traceSteps(steps []ir.Step) []TraceStep {
	out := make([]TraceStep, len(steps))
	for i, s := range steps {
		args := make([]any, len(s.Args))
		for j, a := range s.Args {
			args[j] = ir.Eval(a)
		}
		out[i] = TraceStep{
			Seq:    s.Seq,
			Depth:  s.Depth,
			Op:     s.Op,
			Clause: s.Clause,
			Args:   args,
			Result: ir.Eval(s.Result),
		}
	}
	return out
}

// formatTraceStep renders a step indented by its depth:
//
//	[  1]   Plus(0, 1) = 1  plus/zero
func formatTraceStep(s TraceStep) string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = fmt.Sprint(a)
	}
	indent := ""
	if s.Depth > 1 {
		indent = strings.Repeat("  ", s.Depth-1)
	}
	return fmt.Sprintf("[%3d] %s%s(%s) = %v  %s",
		s.Seq, indent, s.Op, strings.Join(args, ", "), s.Result, s.Clause)
}

// ruleCounts reads per-operation rule applications and memo hits back from
// the metrics registry.
func ruleCounts(m *engine.Metrics) (map[string]int64, int64, error) {
	families, err := m.Registry().Gather()
	if err != nil {
		return nil, 0, err
	}

	rules := map[string]int64{}
	var memoHits int64
	for _, mf := range families {
		switch mf.GetName() {
		case "peano_rule_applications_total":
			for _, metric := range mf.GetMetric() {
				if n := int64(metric.GetCounter().GetValue()); n > 0 {
					rules[labelValue(metric.GetLabel(), "op")] = n
				}
			}
		case "peano_memo_hits_total":
			for _, metric := range mf.GetMetric() {
				memoHits += int64(metric.GetCounter().GetValue())
			}
		}
	}
	return rules, memoHits, nil
}

func labelValue[L interface {
	GetName() string
	GetValue() string
}](labels []L, name string) string {
	for _, l := range labels {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

// formatRuleCounts renders counts as "Plus=5 Times=3" in operation order.
func formatRuleCounts(rules map[string]int64) string {
	order := make(map[string]int)
	for i, op := range engine.Ops() {
		order[string(op)] = i
	}
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return order[names[i]] < order[names[j]] })

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, rules[name])
	}
	return strings.Join(parts, " ")
}
