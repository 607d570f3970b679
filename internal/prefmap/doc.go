// Package prefmap implements the in-memory heterogeneous preference store.
//
// # Purpose
//
// The Map holds at most one value per registered preference type, keyed by
// the type's effective identifier (short path while unambiguous, full path
// otherwise). It is the in-memory source of truth: plugins read and write it
// through the typed accessors, the codec serializes it, and the save
// scheduler watches its change counter.
//
// # Ordering
//
// Iteration order is lexicographic by identifier, not insertion order. The
// codec relies on this to produce deterministic, diff-stable documents.
//
// # Concurrency Model
//
// The Map is tick-driven and single-threaded by design: all mutation happens
// inside the host's update step, so the Map carries no lock. The change
// counter is a plain monotonic uint64 compared by the scheduler at the start
// of each tick.
package prefmap
