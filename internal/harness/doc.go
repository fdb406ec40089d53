// Package harness runs conformance scenarios against the engine.
//
// A scenario is a YAML file naming a snapshot sequence, optional failures
// to inject into the UI primitives, the exact calls each category must see,
// and extra assertions:
//
//	name: save_then_back
//	description: toast shown on save, dismissed when leaving the screen
//	snapshots:
//	  - routes: [A]
//	  - routes: [A, B]
//	  - routes: [A, B]
//	    toast: {is_shown: true, content: saved}
//	  - routes: [A]
//	expect:
//	  route: [push B, pop animate=true]
//	  toast: [present "saved", dismiss]
//	assertions:
//	  - type: max_in_flight
//	    category: route
//	    count: 1
//	  - type: replay_deterministic
//
// Each run uses the real engine, executor and journal: snapshots go through
// engine.Run, calls land on testutil.Recorder, effects and outcomes are
// written to an in-memory SQLite journal, and the journal is replayed to
// check determinism. Call transcripts are compared with golden files via
// goldie.
package harness
