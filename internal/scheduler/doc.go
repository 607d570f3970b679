// Package scheduler decides when the accumulated in-memory preference
// changes are flushed to the storage backend.
//
// # How It Works
//
// The scheduler is tick-driven. Each tick it compares the store's monotonic
// change counter against the version it last persisted:
//
//  1. Counters equal: nothing to do (Idle).
//  2. Counter advanced: the store is Dirty. A save is still held back until
//     the minimum interval has elapsed since the previous save, so rapid
//     successive mutations coalesce into a single write.
//  3. Interval elapsed: flush. On success the saved version and save time
//     are recorded and the saved notification fires.
//
// Shutdown bypasses the interval: a Dirty store is flushed exactly once
// before the process is allowed to terminate.
//
// A store that was never mutated after loading is never saved. The
// scheduler is constructed after the load path, so its baseline version is
// the loaded store's version and a cold start produces zero writes.
package scheduler
