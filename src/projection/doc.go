// Package projection derives UI-ready structures from one feed snapshot.
//
// Every function here is pure and total: a nil snapshot, a missing section or
// a missing entry yields an empty (non-nil) result, never an error. Views are
// recomputed from the latest complete snapshot on every delivery; nothing in
// this package mutates its input.
package projection
