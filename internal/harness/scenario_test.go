package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/peano/internal/config"
)

func TestLoadScenario_Testdata(t *testing.T) {
	files, err := Discover("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Name)
			assert.NotEmpty(t, s.Cases)
		})
	}
}

func TestParseScenario_Full(t *testing.T) {
	data := []byte(`
name: full
description: "every field"
run_id: f
engine:
  max_depth: 42
  memoize: true
cases:
  - expr: "Plus(One, One)"
    expect: 2
  - expr: "Not(False)"
    expect: true
  - expr: "Mod(One, Zero)"
    expect_error: divergent
assertions:
  - type: op_count
    case: 0
    op: Plus
    count: 2
`)
	s, err := ParseScenario(data)
	require.NoError(t, err)

	assert.Equal(t, "full", s.Name)
	assert.Equal(t, "f", s.RunID)
	require.NotNil(t, s.Engine)
	require.NotNil(t, s.Engine.MaxDepth)
	assert.Equal(t, 42, *s.Engine.MaxDepth)
	assert.Nil(t, s.Engine.DetectCycles)
	require.Len(t, s.Cases, 3)
	assert.Equal(t, 2, s.Cases[0].Expect)
	assert.Equal(t, true, s.Cases[1].Expect)
	assert.Equal(t, ErrorDivergent, s.Cases[2].ExpectError)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, AssertOpCount, s.Assertions[0].Type)
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	data := []byte(`
name: typo
description: "misspelled key"
cases:
  - expr: "One"
    expected: 1
`)
	_, err := ParseScenario(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\ncases: [{expr: One, expect: 1}]",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\ncases: [{expr: One, expect: 1}]",
			wantErr: "description is required",
		},
		{
			name:    "no cases",
			yaml:    "name: n\ndescription: d",
			wantErr: "cases list is required",
		},
		{
			name:    "empty expr",
			yaml:    "name: n\ndescription: d\ncases: [{expr: ' ', expect: 1}]",
			wantErr: "cases[0]: expr is required",
		},
		{
			name:    "no expectation",
			yaml:    "name: n\ndescription: d\ncases: [{expr: One}]",
			wantErr: "one of expect or expect_error",
		},
		{
			name:    "both expectations",
			yaml:    "name: n\ndescription: d\ncases: [{expr: One, expect: 1, expect_error: divergent}]",
			wantErr: "mutually exclusive",
		},
		{
			name:    "negative expectation",
			yaml:    "name: n\ndescription: d\ncases: [{expr: One, expect: -1}]",
			wantErr: "negative",
		},
		{
			name:    "float expectation",
			yaml:    "name: n\ndescription: d\ncases: [{expr: One, expect: 1.5}]",
			wantErr: "floats are not terms",
		},
		{
			name:    "string expectation",
			yaml:    "name: n\ndescription: d\ncases: [{expr: One, expect: one}]",
			wantErr: "non-negative integer or boolean",
		},
		{
			name:    "bad max depth",
			yaml:    "name: n\ndescription: d\nengine: {max_depth: 0}\ncases: [{expr: One, expect: 1}]",
			wantErr: "engine.max_depth",
		},
		{
			name:    "assertion without type",
			yaml:    "name: n\ndescription: d\ncases: [{expr: One, expect: 1}]\nassertions: [{case: 0}]",
			wantErr: "type is required",
		},
		{
			name:    "assertion case out of range",
			yaml:    "name: n\ndescription: d\ncases: [{expr: One, expect: 1}]\nassertions: [{type: max_depth, case: 1, limit: 3}]",
			wantErr: "out of range",
		},
		{
			name:    "op_count unknown op",
			yaml:    "name: n\ndescription: d\ncases: [{expr: One, expect: 1}]\nassertions: [{type: op_count, op: Div, count: 1}]",
			wantErr: "UNKNOWN_OPERATION",
		},
		{
			name:    "max_depth without limit",
			yaml:    "name: n\ndescription: d\ncases: [{expr: One, expect: 1}]\nassertions: [{type: max_depth}]",
			wantErr: "limit must be at least 1",
		},
		{
			name:    "clause_used without clause",
			yaml:    "name: n\ndescription: d\ncases: [{expr: One, expect: 1}]\nassertions: [{type: clause_used}]",
			wantErr: "clause is required",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\ncases: [{expr: One, expect: 1}]\nassertions: [{type: final_state}]",
			wantErr: "unknown assertion type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestEngineOverrides_Apply(t *testing.T) {
	depth := 7
	off := false
	o := &EngineOverrides{MaxDepth: &depth, DetectCycles: &off}

	cfg := config.DefaultConfig().Engine
	o.Apply(&cfg)

	assert.Equal(t, 7, cfg.MaxDepth)
	assert.False(t, cfg.DetectCycles)
	assert.Equal(t, int64(0), cfg.MaxSteps, "unset fields keep defaults")

	var nilOverrides *EngineOverrides
	before := cfg
	nilOverrides.Apply(&cfg)
	assert.Equal(t, before, cfg)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt", "sub/c.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	}

	files, err := Discover(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "sub", "c.yaml"),
	}, files)

	files, err = Discover(dir, "[ab]")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = Discover(dir, "[")
	assert.Error(t, err)

	files, err = Discover(dir, "zzz*")
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)

	files, err = Discover(dir, "{a,c}")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "sub", "c.yaml"),
	}, files)

	files, err = Discover(dir, "sub/**")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "sub", "c.yaml")}, files)
}
