// Package store provides SQLite-backed history of marble scenario runs.
//
// Each run records the scenario name, whether it passed, the digest of its
// canonical trace and the trace itself, one row per expectation. The verify
// command re-runs a scenario and compares the new digest with the last
// recorded one.
//
// # Ordering
//
// Runs are ordered by seq, an autoincrement column, never by timestamps.
// Trace rows and error rows keep their position within the run.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
