// Package reconcile turns consecutive state snapshots into UI effects.
//
// Every function here is pure: it looks at a (previous, current) pair and
// returns the effects needed to bring the UI from the first to the second.
// Nothing in this package touches a UI primitive or retains a snapshot.
//
// Pipeline:
//
//	snapshots ─▶ Sequencer ─▶ Pair ─▶ Route    ─▶ 0..1 effect  (route lane)
//	                               ├▶ Overlay  ─▶ 0..2 effects (toast lane)
//	                               ├▶ Overlay  ─▶ 0..2 effects (loader lane)
//	                               ├▶ Overlay  ─▶ 0..2 effects (modal lane)
//	                               └▶ Swipe    ─▶ 0..1 effect  (menu lane)
//
// Route policy, evaluated in order:
//
//  1. same top route name      → nothing
//  2. current depth is 1       → set_root(top), not animated, unless the
//     previous stack was that same root plus one screen (then rule 3)
//  3. stack shrank             → pop, animated unless the previous top is a side route
//  4. otherwise                → push(top)
//
// A length-preserving change of the top route at depth > 1 is reported as a
// push. The policy cannot tell it apart from a real push and does not try to.
//
// Overlay policy depends only on visibility, never on content equality:
//
//	prev  curr   effects
//	off   off    -
//	on    off    hide
//	off   on     show(content)
//	on    on     hide, show(content)
//
// The last row closes and reopens so a visible overlay never shows stale
// content and at most one instance of a kind is attached at a time.
package reconcile
