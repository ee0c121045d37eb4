package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/peano/internal/fizzbuzz"
)

// FizzBuzzOptions holds flags for the fizzbuzz command.
type FizzBuzzOptions struct {
	*RootOptions
	EngineFlags
	From uint64
	To   uint64
}

// FizzBuzzResult is the JSON payload of the fizzbuzz command.
type FizzBuzzResult struct {
	From   uint64   `json:"from"`
	To     uint64   `json:"to"`
	Labels []string `json:"labels"`
}

// NewFizzBuzzCommand creates the fizzbuzz command.
func NewFizzBuzzCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FizzBuzzOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fizzbuzz",
		Short: "Classify a range of naturals as Fizz, Buzz or FizzBuzz",
		Long: `Classify every natural in --from..--to inclusive, one run per number.

Divisibility is derived with Mod and Equals, so every label is the result
of a symbolic derivation.

Examples:
  peano fizzbuzz
  peano fizzbuzz --from 1 --to 30 --memo`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFizzBuzz(opts, cmd)
		},
	}

	opts.EngineFlags.register(cmd)
	cmd.Flags().Uint64Var(&opts.From, "from", 1, "first number")
	cmd.Flags().Uint64Var(&opts.To, "to", 15, "last number (inclusive)")

	return cmd
}

func runFizzBuzz(opts *FizzBuzzOptions, cmd *cobra.Command) error {
	cfg, logger := opts.loaded()
	out := opts.formatter(cmd)

	if err := fizzbuzz.CheckRange(opts.From, opts.To); err != nil {
		err = fmt.Errorf("invalid --from/--to: %w", err)
		_ = out.Error(CodeCommand, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid range", err)
	}

	engCfg, err := opts.EngineFlags.resolve(cmd, cfg.Engine, out)
	if err != nil {
		return err
	}
	eng := newEngine(engCfg, logger, nil)

	labels, err := fizzbuzz.Sequence(eng, opts.From, opts.To)
	if err != nil {
		_ = out.Error(ErrorCode(err, CodeCommand), err.Error(), nil)
		return WrapExitError(ExitFailure, "fizzbuzz failed", err)
	}

	if opts.Format == "json" {
		return out.Success(FizzBuzzResult{From: opts.From, To: opts.To, Labels: labels})
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(labels, "\n"))
	return nil
}
