// Package service contains the application use cases of the mastery scheduler
// that sit beside the practice flow: the mistake ledger, progress tracking,
// practice history and statistics, and spreadsheet export of mastery records.
//
// Services orchestrate the store interfaces (defined in internal/store) and
// never depend on a concrete database. They receive their dependencies through
// constructor injection and panic on nil dependencies at construction time.
//
// Error handling:
//   - Expected conditions are sentinel errors (ErrNothingToPractice, ErrProgressNotFound, ...)
//   - Storage failures are wrapped in ServiceError and match ErrStorageFailure
//   - The API layer maps both onto HTTP status codes with errors.Is
//
// The practice flow (session composition, SM-2 answers, legacy mode) lives in
// the practice subpackage and builds on the services defined here.
package service
