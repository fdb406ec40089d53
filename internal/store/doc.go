// Package store provides the SQLite-backed journal of engine sessions.
//
// The journal is append-only:
//   - Sessions: one row per engine run, with the reconciler options it used
//   - Snapshots: every accepted snapshot, in arrival order
//   - Effects: every planned effect, keyed by its content-addressed ID
//   - Outcomes: the completion status of each effect that reached a lane
//
// # Ordering
//
// All ordering uses seq INTEGER (the engine's logical clock), never
// timestamps, and every read ends in ORDER BY seq ASC plus a binary tie
// breaker. Replaying a journal therefore sees the same order every time.
//
// # Idempotency
//
// Effect IDs hash (session, pair, ordinal, effect), so writing the same plan
// twice is a no-op (ON CONFLICT DO NOTHING).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
