package report

import (
	"testing"
	"time"

	"flow-vault/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rep(t models.ResourceType, id string, status models.ObjectStatus, action models.Action, attempts int) models.ObjectReport {
	r := models.ObjectReport{
		ResourceType: t,
		ResourceID:   id,
		Status:       status,
		Action:       action,
		SkipReason:   models.SkipNone,
		Attempts:     attempts,
		LatencyMs:    int64(attempts) * 10,
	}
	if status == models.ObjectSkipped {
		r.SkipReason = models.SkipDuplicate
		r.Action = models.ActionNone
		r.Message = "exists at target"
	}
	if status == models.ObjectError {
		r.Message = "update failed after 3 attempts"
		r.ErrorDetail = "transient transport error: status 503"
	}
	return r
}

func TestSummarize_Counts(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	reports := []models.ObjectReport{
		rep(models.ResourceWorkflow, "w2", models.ObjectError, models.ActionUpdate, 3),
		rep(models.ResourceWorkflow, "w1", models.ObjectSuccess, models.ActionCreate, 1),
		rep(models.ResourceTag, "t1", models.ObjectSuccess, models.ActionUpdate, 2),
		rep(models.ResourceCredential, "c1", models.ObjectSkipped, models.ActionNone, 0),
	}

	s := Summarize(Input{
		Operation:  models.OpRestore,
		Reports:    reports,
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		VersionID:  "v-1",
	})

	assert.Equal(t, models.StatusPartialSuccess, s.Status)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 4, s.Processed)
	assert.Equal(t, 1, s.Created)
	assert.Equal(t, 1, s.Updated)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 6, s.APICalls)
	assert.Equal(t, 3, s.Retries)
	assert.Equal(t, int64(60), s.TotalLatencyMs)
	assert.Equal(t, int64(10), s.AvgLatencyMs)
	assert.Equal(t, 3*time.Second, s.Duration)
	assert.Equal(t, "v-1", s.VersionID)

	assert.Equal(t, models.TypeCounts{Total: 2, Created: 1, Errors: 1}, s.ByType[models.ResourceWorkflow])
	assert.Equal(t, models.TypeCounts{Total: 1, Updated: 1}, s.ByType[models.ResourceTag])
	assert.Equal(t, models.TypeCounts{Total: 1, Skipped: 1}, s.ByType[models.ResourceCredential])

	require.Len(t, s.ErrorMessages, 1)
	assert.Contains(t, s.ErrorMessages[0], "workflow/w2")
	require.Len(t, s.Warnings, 1)
	assert.Contains(t, s.Warnings[0], "credential/c1 skipped (duplicate)")
}

func TestSummarize_Deterministic(t *testing.T) {
	reports := []models.ObjectReport{
		rep(models.ResourceWorkflow, "b", models.ObjectError, models.ActionUpdate, 1),
		rep(models.ResourceWorkflow, "a", models.ObjectError, models.ActionCreate, 1),
		rep(models.ResourceTag, "z", models.ObjectSkipped, models.ActionNone, 0),
		rep(models.ResourceTag, "y", models.ObjectSkipped, models.ActionNone, 0),
	}
	reversed := []models.ObjectReport{reports[3], reports[2], reports[1], reports[0]}

	a := Summarize(Input{Operation: models.OpSync, Reports: reports})
	b := Summarize(Input{Operation: models.OpSync, Reports: reversed})

	assert.Equal(t, a, b)
	assert.Contains(t, a.ErrorMessages[0], "workflow/a")
}

func TestSummarize_Status(t *testing.T) {
	ok := rep(models.ResourceTag, "t", models.ObjectSuccess, models.ActionCreate, 1)
	bad := rep(models.ResourceTag, "u", models.ObjectError, models.ActionCreate, 1)

	tests := []struct {
		name string
		in   Input
		want models.VersionStatus
	}{
		{"Success", Input{Reports: []models.ObjectReport{ok}}, models.StatusSuccess},
		{"EmptyRunIsSuccess", Input{}, models.StatusSuccess},
		{"PartialSuccess", Input{Reports: []models.ObjectReport{ok, bad}}, models.StatusPartialSuccess},
		{"AllErrorsStillPartial", Input{Reports: []models.ObjectReport{bad}}, models.StatusPartialSuccess},
		{"Failed", Input{Failed: true, Reason: "fetch failed"}, models.StatusFailed},
		{"Aborted", Input{Aborted: true, Reason: "1.4 vs 1.5"}, models.StatusAborted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.in).Status)
		})
	}
}

func TestSummarize_RunLevelErrorsFirst(t *testing.T) {
	s := Summarize(Input{
		Aborted: true,
		Errors:  []string{"compatibility mismatch: 1.42 vs 1.43"},
		Reports: []models.ObjectReport{{ResourceType: models.ResourceTag, ResourceID: "t1", Status: models.ObjectError, Message: "boom"}},
	})
	require.Len(t, s.ErrorMessages, 2)
	assert.Equal(t, "compatibility mismatch: 1.42 vs 1.43", s.ErrorMessages[0])
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, models.StatusAborted, s.Status)
}

func TestSummarize_CancelledNotProcessed(t *testing.T) {
	cancelled := models.ObjectReport{
		ResourceType: models.ResourceWorkflow,
		ResourceID:   "w",
		Status:       models.ObjectError,
		Message:      "cancelled",
	}

	s := Summarize(Input{Reports: []models.ObjectReport{cancelled}})
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 0, s.Processed)
	assert.Equal(t, 1, s.Errors)
}

func TestNewAudit(t *testing.T) {
	finished := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	s := Summarize(Input{
		Operation:  models.OpBackup,
		StartedAt:  finished.Add(-5 * time.Second),
		FinishedAt: finished,
		VersionID:  "v-9",
		Warnings:   []string{"archive export failed"},
	})
	opts := models.RunOptions{Concurrency: 4}

	audit := NewAudit("a-1", s, opts, "p-1")

	assert.Equal(t, "a-1", audit.ID)
	require.NotNil(t, audit.VersionID)
	assert.Equal(t, "v-9", *audit.VersionID)
	assert.Equal(t, models.OpBackup, audit.Operation)
	assert.Equal(t, int64(5000), audit.DurationMs)
	assert.Equal(t, "a-1", audit.Metrics.AuditID)
	assert.Equal(t, opts, audit.Options)
	assert.Equal(t, []string{"archive export failed"}, audit.Warnings)
	assert.Equal(t, finished, audit.CreatedAt)

	noVersion := NewAudit("a-2", models.Summary{Operation: models.OpCleanup}, opts, "")
	assert.Nil(t, noVersion.VersionID)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(models.StatusSuccess))
	assert.Equal(t, 0, ExitCode(models.StatusPartialSuccess))
	assert.Equal(t, 1, ExitCode(models.StatusFailed))
	assert.Equal(t, 2, ExitCode(models.StatusAborted))
}
