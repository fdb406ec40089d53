// Package state defines the immutable values observed and produced by the
// reconciliation engine: snapshots, route stacks, overlay states and effects.
//
// This package contains value types only. Every other internal package
// imports state; state imports nothing internal.
//
// Key design constraints:
//   - Snapshots are values. Nothing downstream mutates a snapshot or the
//     route stack it owns.
//   - Route params carry no floats and no nulls, so they have exactly one
//     canonical JSON encoding (see MarshalCanonical).
//   - All JSON tags use snake_case.
//   - Logical sequence numbers only, never wall-clock timestamps.
package state
