// Package testutil provides deterministic helpers for tests and scenarios.
package testutil

import (
	"fmt"
	"sync"
)

// SequentialRunIDs generates run IDs of the form "<prefix>-001",
// "<prefix>-002", ... in call order.
//
// Unlike engine.FixedGenerator it never runs out, so a scenario can open any
// number of runs and still produce byte-identical traces.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialRunIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialRunIDs creates a generator. An empty prefix becomes "run".
func NewSequentialRunIDs(prefix string) *SequentialRunIDs {
	if prefix == "" {
		prefix = "run"
	}
	return &SequentialRunIDs{prefix: prefix}
}

// Generate returns the next run ID.
//
// Implements engine.RunIDGenerator.
func (g *SequentialRunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%03d", g.prefix, g.seq)
}

// Issued returns how many IDs have been generated.
func (g *SequentialRunIDs) Issued() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts numbering at 1.
//
// Used for test reuse: the same scenario run twice gets the same IDs.
func (g *SequentialRunIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
