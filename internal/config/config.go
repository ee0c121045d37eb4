// Package config provides configuration loading for peano.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/peano/internal/engine"
)

// Config represents the complete peano configuration
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
}

// EngineConfig configures derivation limits and engine features
type EngineConfig struct {
	// MaxDepth is the maximum derivation depth per run (default: 10000, at most 100000)
	MaxDepth int `yaml:"max_depth"`
	// MaxSteps is the maximum number of rule applications per run (0 = unlimited)
	MaxSteps int64 `yaml:"max_steps"`
	// Memoize enables the identity-keyed memo table
	Memoize bool `yaml:"memoize"`
	// DetectCycles reports re-entered queries as divergence (default: true)
	DetectCycles bool `yaml:"detect_cycles"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `yaml:"level"`
}

// StoreConfig configures the derivation log
type StoreConfig struct {
	// Path is the SQLite file runs are appended to (empty = no log)
	Path string `yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxDepth:     engine.DefaultMaxDepth,
			MaxSteps:     0,
			Memoize:      false,
			DetectCycles: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Engine.MaxDepth < 1 {
		return fmt.Errorf("engine.max_depth must be at least 1, got %d", c.Engine.MaxDepth)
	}
	if c.Engine.MaxDepth > engine.MaxDepthCeiling {
		return fmt.Errorf("engine.max_depth must be at most %d, got %d",
			engine.MaxDepthCeiling, c.Engine.MaxDepth)
	}
	if c.Engine.MaxSteps < 0 {
		return fmt.Errorf("engine.max_steps must not be negative, got %d", c.Engine.MaxSteps)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := config.ApplyFile(path); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyFile decodes a YAML file onto c. Keys absent from the file keep
// their current values; unknown keys are an error.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := c.apply(data); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) apply(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Options returns the engine options for this configuration.
func (c EngineConfig) Options() []engine.Option {
	opts := []engine.Option{
		engine.WithMaxDepth(c.MaxDepth),
		engine.WithMaxSteps(c.MaxSteps),
		engine.WithCycleDetection(c.DetectCycles),
	}
	if c.Memoize {
		opts = append(opts, engine.WithMemo())
	}
	return opts
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
