package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/peano/internal/engine"
	"github.com/roach88/peano/internal/ir"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, engine.DefaultMaxDepth, cfg.Engine.MaxDepth)
	assert.Equal(t, int64(0), cfg.Engine.MaxSteps)
	assert.False(t, cfg.Engine.Memoize)
	assert.True(t, cfg.Engine.DetectCycles)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Store.Path)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"zero depth", func(c *Config) { c.Engine.MaxDepth = 0 }, true},
		{"depth at ceiling", func(c *Config) { c.Engine.MaxDepth = engine.MaxDepthCeiling }, false},
		{"depth above ceiling", func(c *Config) { c.Engine.MaxDepth = engine.MaxDepthCeiling + 1 }, true},
		{"negative steps", func(c *Config) { c.Engine.MaxSteps = -1 }, true},
		{"debug level", func(c *Config) { c.Log.Level = "debug" }, false},
		{"upper-case level", func(c *Config) { c.Log.Level = "WARN" }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peano.yaml")
	writeFile(t, path, `
engine:
  max_depth: 500
  detect_cycles: false
log:
  level: debug
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Engine.MaxDepth)
	assert.False(t, cfg.Engine.DetectCycles)
	assert.Equal(t, int64(0), cfg.Engine.MaxSteps, "absent keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peano.yaml")
	writeFile(t, path, "")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromFile_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peano.yaml")
	writeFile(t, path, "engine:\n  max_dept: 5\n")

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_dept")
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_Precedence(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "a", "b")
	require.NoError(t, os.MkdirAll(work, 0o755))

	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
engine:
  max_depth: 100
  max_steps: 7
  memoize: true
`)
	writeFile(t, filepath.Join(project, ProjectConfigFile), `
engine:
  max_depth: 200
`)
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	writeFile(t, explicit, `
log:
  level: error
`)

	l := &Loader{logger: quietLogger(), workDir: work, homeDir: home}

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Engine.MaxDepth, "project overrides user")
	assert.Equal(t, int64(7), cfg.Engine.MaxSteps, "user value survives")
	assert.True(t, cfg.Engine.Memoize)
	assert.Equal(t, "info", cfg.Log.Level)

	cfg, err = l.Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level, "explicit file applies last")
	assert.Equal(t, 200, cfg.Engine.MaxDepth)
}

func TestLoader_InvalidResult(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, ProjectConfigFile), "engine:\n  max_depth: -3\n")

	l := &Loader{logger: quietLogger(), workDir: project, homeDir: t.TempDir()}
	_, err := l.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_depth")
}

func TestLoader_NoFiles(t *testing.T) {
	l := &Loader{logger: quietLogger(), workDir: t.TempDir(), homeDir: t.TempDir()}
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestEngineConfig_Options(t *testing.T) {
	cfg := DefaultConfig().Engine
	cfg.MaxDepth = 50
	cfg.MaxSteps = 1000
	cfg.Memoize = true
	cfg.DetectCycles = false

	e := engine.New(cfg.Options()...)
	assert.Equal(t, 50, e.MaxDepth())
	assert.Equal(t, int64(1000), e.MaxSteps())

	_, err := e.Mod(ir.Two, ir.Zero{})
	assert.True(t, engine.IsDepthExceededError(err), "cycle detection off")

	_, err = e.Plus(ir.Two, ir.Two)
	require.NoError(t, err)
	assert.Positive(t, e.MemoSize())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
