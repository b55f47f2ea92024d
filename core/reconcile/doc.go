// Package reconcile provides the per-object primitives of the synchronization engine:
// comparing object sets, deciding what to do with one object at a target, and
// applying that decision with bounded retries.
//
// # Architecture
//
// The package consists of four pieces:
//
// 1. Diff: a pure comparator that classifies two object sets into added, modified,
// removed and unchanged, keyed by (resource type, id). Payload equality ignores
// volatile fields and the order of unordered arrays such as tags and nodes.
//
// 2. Strategy: a closed set of merge strategies (SourceWins, TargetWins,
// UpdateExisting, AddMissing). Each strategy owns its decision function; strings are
// converted once with ParseStrategy.
//
// 3. Reconciler: applies one object against a Target. It validates, checks declared
// dependencies against the working set, picks create or update from target presence,
// and retries transient failures with exponential backoff. Every call returns exactly
// one models.ObjectReport; failures never escape as errors.
//
// 4. IndexCache: a TTL cache with stampede protection for target-state indices, so
// concurrent runs against the same profile share one fetch.
//
// # Usage Example
//
//	rec := reconcile.NewReconciler(client, reconcile.Config{Retry: reconcile.DefaultRetryPolicy()}, logger)
//	state := reconcile.TargetState{
//	    Existing: reconcile.NewIndex(targetObjects),
//	    Working:  reconcile.NewIndex(sourceObjects),
//	}
//	report := rec.Reconcile(ctx, obj, state, reconcile.SourceWins{})
//
//	// Comparing two snapshots
//	result := reconcile.Diff(baseObjects, currentObjects)
package reconcile
