package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/peano/internal/ir"
)

// createTestStore creates a new on-disk store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a successful run with minimal required fields.
func createTestRun(id, expr string, result ir.Term) ir.Run {
	return ir.Run{
		ID:       id,
		Expr:     expr,
		Result:   result,
		Steps:    2,
		MaxDepth: 2,
	}
}

// onePlusOne returns the two steps of Plus(One, One).
func onePlusOne(runID string) []ir.Step {
	return []ir.Step{
		{RunID: runID, Seq: 1, Depth: 2, Op: "Plus", Clause: "plus/zero", Args: []ir.Term{ir.Zero{}, ir.One}, Result: ir.One},
		{RunID: runID, Seq: 2, Depth: 1, Op: "Plus", Clause: "plus/succ", Args: []ir.Term{ir.One, ir.One}, Result: ir.Two},
	}
}
