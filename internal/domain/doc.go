// Package domain contains the core entities of the mastery scheduler: per-item
// memory state, the mistake ledger, in-flight session progress and completed
// practice history. It is independent of storage and delivery mechanisms.
//
// Values read back from storage are clamped into their valid ranges rather than
// rejected, so a corrupted row never blocks a learner from practicing.
package domain
