package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/peano/internal/engine"
)

// scriptedInput replays fixed lines, then returns end.
type scriptedInput struct {
	lines []string
	end   error
}

func (s *scriptedInput) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", s.end
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func newTestRepl(out io.Writer, opts ...engine.Option) *repl {
	return &repl{
		session: &session{
			eng:    engine.New(opts...),
			logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
		out: out,
	}
}

func TestReplEvaluatesLines(t *testing.T) {
	buf := &bytes.Buffer{}
	r := newTestRepl(buf)

	in := &scriptedInput{
		lines: []string{"Plus(One, Two)", "", "  Not(False)  ", "Fact(Three)"},
		end:   io.EOF,
	}
	require.NoError(t, r.loop(context.Background(), in))
	assert.Equal(t, "3\ntrue\n6\n", buf.String())
}

func TestReplErrorsDoNotStopLoop(t *testing.T) {
	buf := &bytes.Buffer{}
	r := newTestRepl(buf)

	in := &scriptedInput{
		lines: []string{"Fib(True)", "Mod(One, Zero)", "Pred(Zero)"},
		end:   io.EOF,
	}
	require.NoError(t, r.loop(context.Background(), in))

	out := buf.String()
	assert.Contains(t, out, "Error [E006]: Fib argument 1 must be nat, got bool\n")
	assert.Contains(t, out, "Error [DIVERGENT]")
	assert.Contains(t, out, "\n0\n")
}

func TestReplQuit(t *testing.T) {
	buf := &bytes.Buffer{}
	r := newTestRepl(buf)

	in := &scriptedInput{lines: []string{`\q`, "One"}, end: io.EOF}
	require.NoError(t, r.loop(context.Background(), in))
	assert.Empty(t, buf.String())
	assert.Len(t, in.lines, 1)
}

func TestReplInterruptEndsLoop(t *testing.T) {
	r := newTestRepl(io.Discard)
	in := &scriptedInput{end: readline.ErrInterrupt}
	assert.NoError(t, r.loop(context.Background(), in))
}

func TestReplReadFailure(t *testing.T) {
	r := newTestRepl(io.Discard)
	in := &scriptedInput{end: errors.New("broken terminal")}

	err := r.loop(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplCommands(t *testing.T) {
	buf := &bytes.Buffer{}
	r := newTestRepl(buf)
	ctx := context.Background()

	assert.False(t, r.handle(ctx, `\h`))
	assert.Contains(t, buf.String(), `\q`)

	buf.Reset()
	assert.False(t, r.handle(ctx, `\trace`))
	assert.Equal(t, "trace on\n", buf.String())

	buf.Reset()
	r.handle(ctx, "Pred(One)")
	assert.Equal(t, "[  1] Pred(1) = 0  pred/succ\n0\n", buf.String())

	buf.Reset()
	r.handle(ctx, `\trace`)
	r.handle(ctx, `\term`)
	r.handle(ctx, "Succ(One)")
	assert.Equal(t, "trace off\nterm on\nterm:      Succ(Succ(Zero))\n2\n", buf.String())

	buf.Reset()
	assert.False(t, r.handle(ctx, `\x`))
	assert.Contains(t, buf.String(), "unknown command")
}

func TestReplSharesMemoAcrossLines(t *testing.T) {
	buf := &bytes.Buffer{}
	r := newTestRepl(buf, engine.WithMemo())

	ctx := context.Background()
	r.handle(ctx, "Fact(Four)")
	r.handle(ctx, "Fact(Four)")
	assert.Equal(t, "24\n24\n", buf.String())
	assert.Positive(t, r.session.eng.MemoSize())
}

func TestReplCommandInvalidEngineFlagsJSON(t *testing.T) {
	cmd := NewReplCommand(&RootOptions{Format: "json"})
	cmd.SetIn(&bytes.Buffer{})
	out, err := execute(t, cmd, "--max-depth", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeCommand, resp.Error.Code)
}
