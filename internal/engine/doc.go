// Package engine runs the reconciliation pipeline against live UI primitives.
//
// ARCHITECTURE:
//
// Single-Writer Loop:
// Engine.Run consumes the snapshot stream in one goroutine. Validation,
// pairing, planning and journaling all happen there, so the plan for a
// session is a pure function of its snapshot log.
//
// Lanes:
// The Executor owns one lane per effect category (route, toast, loader,
// modal, menu). A lane is an unbounded FIFO of jobs drained by a single
// worker. Within a lane effects run one at a time and each waits for the
// UI to settle; lanes run concurrently. The engine loop only enqueues, so
// a slow transition never delays planning of later pairs.
//
//	Source ──► Run loop ──► Sequencer ──► Reconcile ──► Plan
//	                                                     │
//	                       ┌──────────┬──────────┬───────┴──┬──────────┐
//	                     route      toast     loader      modal      menu
//	                      lane       lane      lane        lane       lane
//
// Overlay handles:
// A Show stores the created handle on its lane; the matching Hide
// dismisses it. Handles are only touched by the lane worker.
//
// Errors:
// Delegation failures are reported as outcomes (DelegationError), logged
// and counted. There is no retry. The rest of the failed job is skipped
// and later jobs proceed.
//
// Determinism:
// Effect IDs hash (session, pair seq, ordinal, effect). Replay re-plans a
// journaled snapshot log and must produce the journaled IDs.
package engine
