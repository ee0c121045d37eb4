package ir

// Step is one resolved rule application inside a run.
// Steps are emitted in completion order: a rule's sub-derivations
// always carry smaller Seq values than the rule itself.
type Step struct {
	RunID  string `json:"run_id"`
	Seq    int64  `json:"seq"`
	Depth  int    `json:"depth"`
	Op     string `json:"op"`
	Clause string `json:"clause"`
	Args   []Term `json:"-"`
	Result Term   `json:"-"`
}

// canonicalMap is the form hashed by StepID and written to golden traces.
func (s Step) canonicalMap() map[string]any {
	m := s.TraceMap()
	m["run_id"] = s.RunID
	return m
}

// TraceMap returns the step without its run ID, reified for display.
// A step inside one trace is identified by Seq alone.
func (s Step) TraceMap() map[string]any {
	args := make([]any, len(s.Args))
	for i, a := range s.Args {
		args[i] = a
	}
	return map[string]any{
		"seq":    s.Seq,
		"depth":  s.Depth,
		"op":     s.Op,
		"clause": s.Clause,
		"args":   args,
		"result": s.Result,
	}
}

// Run summarizes one top-level evaluation.
// Result is nil when Error is set.
type Run struct {
	ID        string
	Expr      string
	Result    Term
	ErrorCode string // Stable error category, e.g. DIVERGENT
	Error     string
	Steps     int64
	MaxDepth  int
}
