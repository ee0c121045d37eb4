package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/peano/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Set by the root command before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the peano CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "peano",
		Short: "peano - a closed symbolic evaluator",
		Long: `Evaluate arithmetic and boolean expressions over Peano naturals
by ordered rule matching, with every derivation step recorded.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd.ErrOrStderr())
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: peano.yaml in cwd or parents)")

	// Add subcommands
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))
	cmd.AddCommand(NewFizzBuzzCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// setup validates global flags, loads configuration and installs the
// logger. Logs go to w so they never mix with command output.
func (o *RootOptions) setup(w io.Writer) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	// Config files are located before the configured level is known
	bootstrap := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: o.level(slog.LevelInfo)}))
	cfg, err := config.NewLoader(bootstrap).Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	o.Config = cfg
	o.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: o.level(level)}))
	slog.SetDefault(o.Logger)
	return nil
}

// level returns Debug when --verbose is set, otherwise configured.
func (o *RootOptions) level(configured slog.Level) slog.Level {
	if o.Verbose {
		return slog.LevelDebug
	}
	return configured
}

// formatter returns an output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// loaded returns the configuration and logger, falling back to defaults
// and a discarding logger when the root command did not run (tests that
// execute a subcommand directly).
func (o *RootOptions) loaded() (*config.Config, *slog.Logger) {
	if o.Config == nil {
		o.Config = config.DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Config, o.Logger
}
