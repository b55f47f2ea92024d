// Package report folds per-object outcomes into a run summary and its audit record.
//
// Summarize is a pure, deterministic fold: the same reports in any order produce the
// same Summary. Status is derived as follows:
//
//   - aborted when the compatibility gate rejected the run,
//   - failed when the run could not complete (fetch failure, invalid version tag),
//   - partial_success when at least one object ended in error,
//   - success otherwise.
//
// # Usage
//
//	summary := report.Summarize(report.Input{
//	    Operation: models.OpRestore,
//	    Reports:   reports,
//	    StartedAt: start,
//	    FinishedAt: time.Now(),
//	})
//	audit := report.NewAudit(auditID, summary, opts, profileID)
//	os.Exit(report.ExitCode(summary.Status))
package report
