package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFizzBuzzCommandDefaultRange(t *testing.T) {
	cmd := NewFizzBuzzCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd)
	require.NoError(t, err)

	want := "1\n2\nFizz\n4\nBuzz\nFizz\n7\n8\nFizz\nBuzz\n11\nFizz\n13\n14\nFizzBuzz\n"
	assert.Equal(t, want, out)
}

func TestFizzBuzzCommandJSON(t *testing.T) {
	cmd := NewFizzBuzzCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, "--from", "9", "--to", "12", "--memo")
	require.NoError(t, err)

	var data FizzBuzzResult
	require.NoError(t, json.Unmarshal(decodeResponse(t, out).Data, &data))
	assert.Equal(t, uint64(9), data.From)
	assert.Equal(t, uint64(12), data.To)
	assert.Equal(t, []string{"Fizz", "Buzz", "11", "Fizz"}, data.Labels)
}

func TestFizzBuzzCommandInvalidRange(t *testing.T) {
	cmd := NewFizzBuzzCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--from", "5", "--to", "4")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "greater than")
}

func TestFizzBuzzCommandEngineFailure(t *testing.T) {
	cmd := NewFizzBuzzCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, "--max-steps", "3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "STEPS_EXCEEDED", resp.Error.Code)
}

func TestFizzBuzzCommandAboveMaximum(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"max uint64", []string{"--to", "18446744073709551615"}},
		{"large start", []string{"--from", "4611686018427387904", "--to", "4611686018427387904"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewFizzBuzzCommand(&RootOptions{Format: "json"})
			out, err := execute(t, cmd, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decodeResponse(t, out)
			require.NotNil(t, resp.Error)
			assert.Equal(t, CodeCommand, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, "above the maximum")
		})
	}
}

func TestFizzBuzzCommandInvalidEngineFlagsJSON(t *testing.T) {
	cmd := NewFizzBuzzCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, "--max-steps", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeCommand, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "max_steps")
}
