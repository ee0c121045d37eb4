package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/peano/internal/engine"
	"github.com/roach88/peano/internal/expr"
	"github.com/roach88/peano/internal/ir"
	"github.com/roach88/peano/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	EngineFlags
	Database string
	RunID    string // optional - defaults to the last appended run
	Op       string // optional - filter to one operation
	List     bool
	Verify   bool
}

// RunInfo summarizes a stored run.
type RunInfo struct {
	ID        string `json:"id"`
	Expr      string `json:"expr"`
	Value     any    `json:"value,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`
	Steps     int64  `json:"steps"`
	MaxDepth  int    `json:"max_depth"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run      RunInfo     `json:"run"`
	Steps    []TraceStep `json:"steps"`
	Verified *bool       `json:"verified,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show a recorded derivation",
		Long: `Show a run from a derivation log written by eval or repl --db.

Steps are listed in completion order, indented by derivation depth, each
with the clause that resolved it.

With --verify the run's expression is evaluated again under the same run
ID and the fresh steps are compared with the stored ones by content hash.
Evaluation is deterministic, so any difference means the log was written
under different engine settings or by a different rule set.

Exit codes:
  0 - Run shown (and verified, with --verify)
  1 - Verification found a mismatch
  2 - Command error (database or run not found, etc.)

Examples:
  peano trace --db ./peano.db
  peano trace --db ./peano.db --list
  peano trace --db ./peano.db --run run-3f2a --op Plus
  peano trace --db ./peano.db --verify --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	opts.EngineFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: store.path from config)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run to show (default: last run)")
	cmd.Flags().StringVar(&opts.Op, "op", "", "filter steps to one operation")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list every run in the log")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "re-evaluate the run and compare derivations")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger := opts.loaded()
	out := opts.formatter(cmd)

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	if dbPath == "" {
		const msg = "no database: pass --db or set store.path"
		_ = out.Error(CodeCommand, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = out.Error(CodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.List {
		return listRuns(ctx, st, opts, cmd)
	}

	runID := opts.RunID
	if runID == "" {
		runID, err = st.LastRunID(ctx)
		if err != nil {
			_ = out.Error(CodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "empty derivation log", err)
		}
	}

	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		_ = out.Error(CodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	steps, err := st.ReadSteps(ctx, runID)
	if err != nil {
		_ = out.Error(CodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}
	logger.Debug("run loaded", "run_id", runID, "steps", len(steps))

	result := TraceResult{
		Run:   runInfo(run),
		Steps: traceSteps(filterSteps(steps, opts.Op)),
	}

	var mismatch error
	if opts.Verify {
		engCfg, err := opts.EngineFlags.resolve(cmd, cfg.Engine, out)
		if err != nil {
			return err
		}
		mismatch, err = verifyRun(newEngine(engCfg, logger, nil), run, steps)
		if err != nil {
			_ = out.Error(ErrorCode(err, CodeCommand), err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to re-evaluate run", err)
		}
		verified := mismatch == nil
		result.Verified = &verified
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result, RunID: runID}
		if mismatch != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: CodeMismatch, Message: mismatch.Error()}
		}
		if err := out.JSON(resp); err != nil {
			return err
		}
	} else {
		writeTraceText(cmd.OutOrStdout(), result)
		if mismatch != nil {
			_ = out.Error(CodeMismatch, mismatch.Error(), nil)
		}
	}

	if mismatch != nil {
		return WrapExitError(ExitFailure, "derivation mismatch", mismatch)
	}
	return nil
}

func listRuns(ctx context.Context, st *store.Store, opts *TraceOptions, cmd *cobra.Command) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	infos := make([]RunInfo, len(runs))
	for i, r := range runs {
		infos[i] = runInfo(r)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(infos)
	}
	w := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(w, "%s  %s  %s\n", info.ID, info.Expr, outcome(info))
	}
	return nil
}

// verifyRun re-evaluates run under its own ID and compares step hashes.
// It returns a non-nil mismatch when the derivations differ, and err when
// the stored expression cannot be evaluated at all.
func verifyRun(eng *engine.Engine, run ir.Run, stored []ir.Step) (mismatch error, err error) {
	node, err := expr.Parse(run.Expr)
	if err != nil {
		return nil, err
	}

	rec := &engine.Recorder{}
	_, evalErr := expr.EvaluateNode(eng, node, engine.WithRunID(run.ID), engine.RecordTo(rec))
	if got := engine.ErrorCode(evalErr); got != run.ErrorCode {
		return fmt.Errorf("outcome differs: stored %q, got %q", run.ErrorCode, got), nil
	}

	fresh := rec.Steps()
	if len(fresh) != len(stored) {
		return fmt.Errorf("step count differs: stored %d, got %d", len(stored), len(fresh)), nil
	}
	for i := range stored {
		want, err := ir.StepID(stored[i])
		if err != nil {
			return nil, err
		}
		got, err := ir.StepID(fresh[i])
		if err != nil {
			return nil, err
		}
		if want != got {
			return fmt.Errorf("step %d differs: stored %s, got %s",
				stored[i].Seq, stepLine(stored[i]), stepLine(fresh[i])), nil
		}
	}
	return nil, nil
}

func runInfo(r ir.Run) RunInfo {
	info := RunInfo{
		ID:        r.ID,
		Expr:      r.Expr,
		ErrorCode: r.ErrorCode,
		Error:     r.Error,
		Steps:     r.Steps,
		MaxDepth:  r.MaxDepth,
	}
	if r.Result != nil {
		info.Value = ir.Eval(r.Result)
	}
	return info
}

func filterSteps(steps []ir.Step, op string) []ir.Step {
	if op == "" {
		return steps
	}
	parsed, err := engine.ParseOp(op)
	if err == nil {
		op = string(parsed)
	}
	var out []ir.Step
	for _, s := range steps {
		if s.Op == op {
			out = append(out, s)
		}
	}
	return out
}

func outcome(info RunInfo) string {
	if info.ErrorCode != "" {
		return "error " + info.ErrorCode
	}
	return fmt.Sprintf("= %v", info.Value)
}

func stepLine(s ir.Step) string {
	return formatTraceStep(traceSteps([]ir.Step{s})[0])
}

func writeTraceText(w io.Writer, r TraceResult) {
	fmt.Fprintf(w, "run %s: %s\n", r.Run.ID, r.Run.Expr)
	if r.Run.ErrorCode != "" {
		fmt.Fprintf(w, "error [%s]: %s\n", r.Run.ErrorCode, r.Run.Error)
	} else {
		fmt.Fprintf(w, "value: %v\n", r.Run.Value)
	}
	fmt.Fprintf(w, "steps: %d  max depth: %d\n", r.Run.Steps, r.Run.MaxDepth)
	fmt.Fprintln(w)
	for _, s := range r.Steps {
		fmt.Fprintln(w, formatTraceStep(s))
	}
	if r.Verified != nil && *r.Verified {
		fmt.Fprintf(w, "\n%s derivation verified\n", markPass)
	}
}

