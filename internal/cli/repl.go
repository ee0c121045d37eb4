package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/robertkrimen/isatty"
	"github.com/spf13/cobra"

	"github.com/roach88/peano/internal/engine"
	"github.com/roach88/peano/internal/expr"
)

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions
	EngineFlags
	ShowTerm bool
	Trace    bool
	Stats    bool
	Database string
}

// lineReader is the part of readline the loop uses.
type lineReader interface {
	Readline() (string, error)
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Evaluate expressions interactively",
		Long: `Read expressions line by line and print each value.

All lines share one engine, so with --memo a sub-derivation resolved on an
earlier line is reused by later ones. Each line is its own run.

Commands:
  \h      help
  \trace  toggle step tracing
  \term   toggle structural terms
  \q      quit

When stdin is not a terminal the prompt and banner are suppressed, so
expressions can be piped in:
  printf 'Fact(Four)\nFib(Six)\n' | peano repl`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(opts, cmd)
		},
	}

	opts.EngineFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.ShowTerm, "show-term", false, "also print the structural term")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print every derivation step")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "print run statistics and rule counts")
	cmd.Flags().StringVar(&opts.Database, "db", "", "append each run to a SQLite derivation log")

	return cmd
}

func runRepl(opts *ReplOptions, cmd *cobra.Command) error {
	cfg, logger := opts.loaded()

	engCfg, err := opts.EngineFlags.resolve(cmd, cfg.Engine, opts.formatter(cmd))
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

	interactive := cmd.InOrStdin() == os.Stdin && isatty.Check(os.Stdin.Fd())
	w := cmd.OutOrStdout()

	prompt := ""
	if interactive {
		prompt = "peano> "
		fmt.Fprintln(w, "peano shell")
		fmt.Fprintln(w, `\h for help`)
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "bye!",
		HistorySearchFold: true,
		Stdin:             io.NopCloser(cmd.InOrStdin()),
		Stdout:            w,
		Stderr:            cmd.ErrOrStderr(),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start line editor", err)
	}
	defer l.Close()

	r := &repl{session: s, out: w, stats: opts.Stats, memo: engCfg.Memoize}
	return r.loop(cmd.Context(), l)
}

// historyFile returns the readline history path, or "" to disable history.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".peano_history")
}

// repl runs the read-eval-print loop over a session.
type repl struct {
	session *session
	out     io.Writer
	stats   bool
	memo    bool
}

// loop reads lines until EOF, an interrupt or \q.
// Evaluation errors are printed and the loop continues.
func (r *repl) loop(ctx context.Context, in lineReader) error {
	for {
		line, err := in.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return WrapExitError(ExitCommandError, "failed to read input", err)
		}
		if quit := r.handle(ctx, line); quit {
			return nil
		}
	}
}

// handle processes one input line and reports whether to quit.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	switch line {
	case `\q`:
		return true
	case `\h`:
		fmt.Fprintln(r.out, `\h	help`)
		fmt.Fprintln(r.out, `\trace	toggle step tracing`)
		fmt.Fprintln(r.out, `\term	toggle structural terms`)
		fmt.Fprintln(r.out, `\q	quit`)
		return false
	case `\trace`:
		r.session.trace = !r.session.trace
		fmt.Fprintf(r.out, "trace %s\n", onOff(r.session.trace))
		return false
	case `\term`:
		r.session.showTerm = !r.session.showTerm
		fmt.Fprintf(r.out, "term %s\n", onOff(r.session.showTerm))
		return false
	}
	if strings.HasPrefix(line, `\`) {
		fmt.Fprintf(r.out, "unknown command %s (\\h for help)\n", line)
		return false
	}

	result, err := r.session.eval(ctx, line)
	if result != nil {
		writeEvalText(r.out, *result, r.stats, r.memo)
	}
	if err != nil {
		var ce *expr.CompileError
		code := ErrorCode(err, CodeCommand)
		if errors.As(err, &ce) {
			fmt.Fprintf(r.out, "Error [%s]: %s\n", code, ce.Message)
		} else {
			fmt.Fprintf(r.out, "Error [%s]: %v\n", code, err)
		}
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
