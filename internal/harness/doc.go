// Package harness runs YAML evaluation scenarios against the engine.
//
// # Scenario Format
//
//	name: arithmetic
//	description: "Peano addition and multiplication"
//	run_id: arith              # optional run ID prefix (default: name)
//	engine:                    # optional overrides of the default engine config
//	  max_depth: 500
//	  detect_cycles: false
//	cases:
//	  - expr: "Plus(Four, Three)"
//	    expect: 7
//	  - expr: "Mod(Five, Zero)"
//	    expect_error: divergent
//	assertions:
//	  - type: op_count
//	    case: 0
//	    op: Plus
//	    count: 5
//	  - type: max_depth
//	    case: 0
//	    limit: 10
//	  - type: clause_used
//	    case: 0
//	    clause: plus/zero
//
// # Assertion Types
//
//   - op_count: A case resolved op exactly count times
//   - max_depth: The deepest step of a case is at most limit
//   - clause_used: Some step of a case applied the named clause
//   - clause_unused: No step of a case applied the named clause
//
// # Deterministic Testing
//
// Every scenario runs with:
//   - Sequential run IDs (testutil.SequentialRunIDs)
//   - The engine's per-run logical clock
//   - A fresh in-memory SQLite derivation log
//
// Assertions query that log, so a scenario checks what was recorded, not
// what the harness believes happened. Identical scenarios produce
// byte-identical snapshots for golden comparison.
package harness
