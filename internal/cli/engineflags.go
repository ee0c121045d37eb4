package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/peano/internal/config"
	"github.com/roach88/peano/internal/engine"
)

// EngineFlags are the engine settings a command can override.
// Only flags given on the command line replace configured values.
type EngineFlags struct {
	MaxDepth     int
	MaxSteps     int64
	Memo         bool
	NoCycleCheck bool
}

func (f *EngineFlags) register(cmd *cobra.Command) {
	defaults := config.DefaultConfig().Engine
	cmd.Flags().IntVar(&f.MaxDepth, "max-depth", defaults.MaxDepth, "maximum derivation depth")
	cmd.Flags().Int64Var(&f.MaxSteps, "max-steps", defaults.MaxSteps, "maximum rule applications per run (0 = unlimited)")
	cmd.Flags().BoolVar(&f.Memo, "memo", defaults.Memoize, "memoize resolved sub-queries")
	cmd.Flags().BoolVar(&f.NoCycleCheck, "no-cycle-check", !defaults.DetectCycles, "disable divergence detection (rely on the depth limit)")
}

// resolve layers changed flags over cfg and validates the result. An
// invalid result is reported through out before the exit error returns.
func (f *EngineFlags) resolve(cmd *cobra.Command, cfg config.EngineConfig, out *OutputFormatter) (config.EngineConfig, error) {
	flags := cmd.Flags()
	if flags.Changed("max-depth") {
		cfg.MaxDepth = f.MaxDepth
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = f.MaxSteps
	}
	if flags.Changed("memo") {
		cfg.Memoize = f.Memo
	}
	if flags.Changed("no-cycle-check") {
		cfg.DetectCycles = !f.NoCycleCheck
	}

	check := config.Config{Engine: cfg, Log: config.LogConfig{Level: "info"}}
	if err := check.Validate(); err != nil {
		_ = out.Error(CodeCommand, err.Error(), nil)
		return cfg, WrapExitError(ExitCommandError, "invalid engine settings", err)
	}
	return cfg, nil
}

// newEngine builds an engine from the resolved settings.
func newEngine(cfg config.EngineConfig, logger *slog.Logger, metrics *engine.Metrics) *engine.Engine {
	opts := append(cfg.Options(), engine.WithLogger(logger))
	if metrics != nil {
		opts = append(opts, engine.WithMetrics(metrics))
	}
	return engine.New(opts...)
}
