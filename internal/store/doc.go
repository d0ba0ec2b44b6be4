// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the scheduler's core logic. Every method takes the learner id as an
// explicit argument; there is no process-wide per-learner state.
package store
