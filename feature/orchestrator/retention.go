package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flow-vault/core/models"
	"flow-vault/core/retention"
	"flow-vault/core/versionstore"

	"go.uber.org/zap"
)

// CleanupResult is the outcome of a cleanup run.
type CleanupResult struct {
	retention.Result
	// Applied is false for a preview.
	Applied  bool     `json:"applied"`
	Deleted  int64    `json:"deleted"`
	AuditID  string   `json:"audit_id,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// EvaluateRetention partitions the Versions matching f under policy without changing anything.
func (o *Orchestrator) EvaluateRetention(ctx context.Context, f versionstore.VersionFilter, policy retention.Policy) (retention.Result, error) {
	f.Limit = 0
	versions, err := o.store.ListVersions(ctx, f)
	if err != nil {
		return retention.Result{}, err
	}
	return retention.Evaluate(versions, policy, o.clock.Now()), nil
}

// Cleanup evaluates policy and, when apply is set, deletes every eligible Version
// together with its archived bundle. A policy with no rules deletes nothing.
// An applied cleanup always leaves one AuditRecord, whatever its outcome.
func (o *Orchestrator) Cleanup(ctx context.Context, f versionstore.VersionFilter, policy retention.Policy, apply bool) (*CleanupResult, error) {
	started := o.clock.Now()
	res, err := o.EvaluateRetention(ctx, f, policy)
	if err != nil {
		return nil, err
	}
	out := &CleanupResult{Result: res}
	if !apply {
		return out, nil
	}

	var ids []string
	reason := cleanupReason(res)
	if policy.IsEmpty() {
		reason = "retention policy has no rules; nothing deleted"
		out.Warnings = append(out.Warnings, reason)
	} else {
		ids = res.EligibleIDs()
	}
	audit := o.cleanupAudit(f.ProfileID, started, len(ids), reason)

	// The audit must be written even when the caller has gone away.
	persistCtx := context.WithoutCancel(ctx)

	if policy.IsEmpty() {
		if err := o.store.WriteAuditRecord(persistCtx, &audit); err != nil {
			return out, err
		}
		out.AuditID = audit.ID
		return out, nil
	}

	deleted, err := o.store.DeleteVersions(persistCtx, ids, &audit)
	if err != nil {
		o.logger.Error("Failed to apply cleanup", zap.Error(err))
		audit.ID = o.ids.New()
		audit.Status = models.StatusFailed
		audit.Reason = "failed to delete versions: " + err.Error()
		audit.Metrics.Status = models.StatusFailed
		audit.Metrics.Reason = audit.Reason
		audit.Metrics.Processed = 0
		audit.Metrics.Errors = len(ids)
		audit.Metrics.ErrorMessages = []string{err.Error()}
		audit.Errors = audit.Metrics.ErrorMessages
		audit.Metrics.AuditID = audit.ID
		if auditErr := o.store.WriteAuditRecord(persistCtx, &audit); auditErr != nil {
			o.logger.Error("Failed to write cleanup audit", zap.Error(auditErr))
		} else {
			out.AuditID = audit.ID
		}
		return out, err
	}
	out.Applied = true
	out.Deleted = deleted
	out.AuditID = audit.ID

	if o.archive != nil && len(ids) > 0 {
		if err := o.archive.Remove(persistCtx, ids); err != nil {
			out.Warnings = append(out.Warnings, "bundle removal failed: "+err.Error())
			o.logger.Warn("Failed to remove archived bundles", zap.Error(err))
		}
	}

	o.logger.Info("Cleanup applied",
		zap.Int64("deleted", deleted),
		zap.Int("retained", len(res.Retain)),
		zap.String("audit_id", audit.ID),
	)
	return out, nil
}

func (o *Orchestrator) cleanupAudit(profileID string, started time.Time, n int, reason string) models.AuditRecord {
	finished := o.clock.Now()
	summary := models.Summary{
		Operation:  models.OpCleanup,
		Status:     models.StatusSuccess,
		Total:      n,
		Processed:  n,
		Reason:     reason,
		StartedAt:  started,
		FinishedAt: finished,
		Duration:   finished.Sub(started),
	}
	audit := models.AuditRecord{
		ID:         o.ids.New(),
		Operation:  models.OpCleanup,
		ProfileID:  profileID,
		Status:     models.StatusSuccess,
		Reason:     reason,
		DurationMs: summary.Duration.Milliseconds(),
		Metrics:    summary,
		CreatedAt:  finished,
	}
	audit.Metrics.AuditID = audit.ID
	return audit
}

func cleanupReason(res retention.Result) string {
	if len(res.Eligible) == 0 {
		return "no versions eligible for deletion"
	}
	ids := res.EligibleIDs()
	return fmt.Sprintf("deleted %d version(s): %s", len(ids), strings.Join(ids, ", "))
}
