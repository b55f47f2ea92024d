// Package orchestrator runs backup, restore and sync operations end to end.
//
// Each run walks the same state machine, and every transition is logged with the
// run id:
//
//	PENDING → FETCHING → (GATE: ABORTED | VALIDATED) → RECONCILING → SUMMARIZING → COMPLETE
//
// The gate is entered for restore and sync only. An aborted run never reaches the
// reconciler; it still records a Version and an AuditRecord. Fetch failures produce a
// failed run, which is also recorded.
//
// RECONCILING dispatches objects in dependency order (tags, credentials, workflows)
// through a weighted semaphore sized by RunOptions.Concurrency and joins all of them
// before summarizing. Cancelling the context stops new dispatches; objects that never
// started are reported as cancelled errors and applied mutations are not rolled back.
//
// SUMMARIZING writes the Version, its ObjectRecords and the AuditRecord in one
// transaction using a context detached from cancellation; COMPLETE follows a
// successful commit. A persistence failure is
// returned to the caller wrapping errs.ErrPersistence.
//
// Concurrent runs against the same profile are not coordinated.
package orchestrator
