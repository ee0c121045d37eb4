package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/peano/internal/ir"
)

func TestReadRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := createTestRun("run-1", "Equals(Two, Two)", ir.True{})
	if err := s.WriteRun(ctx, want); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if got.ID != want.ID || got.Expr != want.Expr || got.Steps != want.Steps || got.MaxDepth != want.MaxDepth {
		t.Errorf("ReadRun() = %+v, want %+v", got, want)
	}
	if !ir.Equal(got.Result, want.Result) {
		t.Errorf("Result = %v, want %v", got.Result, want.Result)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadRun() error = %v, want ErrNotFound", err)
	}
}

func TestListRuns_AppendOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if runs == nil || len(runs) != 0 {
		t.Errorf("ListRuns() on empty log = %#v, want empty slice", runs)
	}

	// IDs deliberately sort opposite to append order
	for _, id := range []string{"c", "b", "a"} {
		if err := s.WriteRun(ctx, createTestRun(id, "Zero", ir.Zero{})); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", id, err)
		}
	}

	runs, err = s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "c" || ids[1] != "b" || ids[2] != "a" {
		t.Errorf("ListRuns() ids = %v, want [c b a]", ids)
	}

	last, err := s.LastRunID(ctx)
	if err != nil {
		t.Fatalf("LastRunID() failed: %v", err)
	}
	if last != "a" {
		t.Errorf("LastRunID() = %q, want a", last)
	}
}

func TestLastRunID_Empty(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LastRunID(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LastRunID() error = %v, want ErrNotFound", err)
	}
}

func TestReadSteps_Ordered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.WriteRun(ctx, createTestRun("run-1", "Plus(One, One)", ir.Two)); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	want := onePlusOne("run-1")
	// Write in reverse; reads must still come back by seq
	if err := s.WriteSteps(ctx, []ir.Step{want[1], want[0]}); err != nil {
		t.Fatalf("WriteSteps() failed: %v", err)
	}

	got, err := s.ReadSteps(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadSteps() failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ReadSteps() returned %d steps, want %d", len(got), len(want))
	}
	for i := range want {
		if ir.MustStepID(got[i]) != ir.MustStepID(want[i]) {
			t.Errorf("step %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStepQueries(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.WriteTrace(ctx, createTestRun("run-1", "Plus(One, One)", ir.Two), onePlusOne("run-1")); err != nil {
		t.Fatalf("WriteTrace() failed: %v", err)
	}

	n, err := s.CountSteps(ctx, "run-1", "Plus")
	if err != nil || n != 2 {
		t.Errorf("CountSteps(Plus) = %d, %v; want 2, nil", n, err)
	}
	n, err = s.CountSteps(ctx, "run-1", "Times")
	if err != nil || n != 0 {
		t.Errorf("CountSteps(Times) = %d, %v; want 0, nil", n, err)
	}

	depth, err := s.MaxStepDepth(ctx, "run-1")
	if err != nil || depth != 2 {
		t.Errorf("MaxStepDepth() = %d, %v; want 2, nil", depth, err)
	}
	depth, err = s.MaxStepDepth(ctx, "other")
	if err != nil || depth != 0 {
		t.Errorf("MaxStepDepth(other) = %d, %v; want 0, nil", depth, err)
	}

	used, err := s.ClauseUsed(ctx, "run-1", "plus/zero")
	if err != nil || !used {
		t.Errorf("ClauseUsed(plus/zero) = %v, %v; want true, nil", used, err)
	}
	used, err = s.ClauseUsed(ctx, "run-1", "times/zero")
	if err != nil || used {
		t.Errorf("ClauseUsed(times/zero) = %v, %v; want false, nil", used, err)
	}
}
