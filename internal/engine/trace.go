package engine

import "github.com/roach88/peano/internal/ir"

// Tracer receives each resolved step of a run in completion order.
type Tracer interface {
	Step(s ir.Step)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(s ir.Step)

// Step calls f(s).
func (f TracerFunc) Step(s ir.Step) {
	f(s)
}

// Recorder is a Tracer that keeps every step in memory.
type Recorder struct {
	steps []ir.Step
}

// Step appends s.
func (r *Recorder) Step(s ir.Step) {
	r.steps = append(r.steps, s)
}

// Steps returns the recorded steps in completion order.
func (r *Recorder) Steps() []ir.Step {
	return r.steps
}

// Len returns the number of recorded steps.
func (r *Recorder) Len() int {
	return len(r.steps)
}

// Reset discards recorded steps.
func (r *Recorder) Reset() {
	r.steps = nil
}
