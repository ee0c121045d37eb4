// Package store provides SQLite-backed storage for derivation logs.
//
// The store is an append-only log with:
//   - Runs: one row per evaluated expression, with its outcome
//   - Steps: one row per resolved rule application of a run
//
// The log is diagnostic output. Nothing in the engine reads it back, so a
// derivation never depends on stored state.
//
// # Critical Patterns
//
// Idempotent Writes
//   - Step IDs are content addressed (ir.StepID)
//   - Writing the same run or step twice is a no-op
//
// Logical Time
//   - Runs are ordered by an append counter, steps by their run's logical clock
//   - NEVER by timestamps
//
// Deterministic Query Results
//   - All list queries carry an explicit ORDER BY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
