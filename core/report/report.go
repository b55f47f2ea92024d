package report

import (
	"fmt"
	"sort"
	"time"

	"flow-vault/core/models"
)

// cancelledMessage matches the reconciler's message for objects stopped by cancellation.
const cancelledMessage = "cancelled"

// Input is everything Summarize needs to fold a run.
type Input struct {
	Operation models.OperationType
	Reports   []models.ObjectReport

	// Aborted marks a run rejected by the compatibility gate.
	Aborted bool
	// Failed marks a run that could not complete.
	Failed bool
	// Reason explains an aborted or failed run.
	Reason string

	// Changes carries comparator results against a baseline, if any.
	Changes *models.ChangeCounts
	// Warnings are run-level warnings (e.g. archive export failures).
	Warnings []string
	// Errors are run-level error messages, listed before per-object ones.
	Errors []string

	StartedAt  time.Time
	FinishedAt time.Time
	VersionID  string
}

// Summarize folds reports into a Summary.
func Summarize(in Input) models.Summary {
	reports := make([]models.ObjectReport, len(in.Reports))
	copy(reports, in.Reports)
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i], reports[j]
		if a.ResourceType != b.ResourceType {
			return a.ResourceType.Rank() < b.ResourceType.Rank()
		}
		return a.ResourceID < b.ResourceID
	})

	s := models.Summary{
		Operation:  in.Operation,
		Reason:     in.Reason,
		Total:      len(reports),
		ByType:     make(map[models.ResourceType]models.TypeCounts),
		Changes:    in.Changes,
		StartedAt:  in.StartedAt,
		FinishedAt: in.FinishedAt,
		VersionID:  in.VersionID,
	}
	if !in.FinishedAt.IsZero() && !in.StartedAt.IsZero() {
		s.Duration = in.FinishedAt.Sub(in.StartedAt)
	}
	s.Warnings = append(s.Warnings, in.Warnings...)
	s.ErrorMessages = append(s.ErrorMessages, in.Errors...)

	for _, r := range reports {
		tc := s.ByType[r.ResourceType]
		tc.Total++

		key := fmt.Sprintf("%s/%s", r.ResourceType, r.ResourceID)
		switch r.Status {
		case models.ObjectSuccess:
			s.Processed++
			switch r.Action {
			case models.ActionCreate:
				s.Created++
				tc.Created++
			case models.ActionUpdate:
				s.Updated++
				tc.Updated++
			}
		case models.ObjectSkipped:
			s.Processed++
			s.Skipped++
			tc.Skipped++
			s.Warnings = append(s.Warnings, fmt.Sprintf("%s skipped (%s): %s", key, r.SkipReason, r.Message))
		case models.ObjectError:
			if r.Message != cancelledMessage {
				s.Processed++
			}
			s.Errors++
			tc.Errors++
			msg := fmt.Sprintf("%s: %s", key, r.Message)
			if r.ErrorDetail != "" && r.ErrorDetail != r.Message {
				msg += ": " + r.ErrorDetail
			}
			s.ErrorMessages = append(s.ErrorMessages, msg)
		}

		s.ByType[r.ResourceType] = tc
		s.APICalls += r.Attempts
		if r.Attempts > 1 {
			s.Retries += r.Attempts - 1
		}
		s.TotalLatencyMs += r.LatencyMs
	}

	if s.APICalls > 0 {
		s.AvgLatencyMs = s.TotalLatencyMs / int64(s.APICalls)
	}

	s.Status = status(in, s.Errors)
	return s
}

func status(in Input, errors int) models.VersionStatus {
	switch {
	case in.Aborted:
		return models.StatusAborted
	case in.Failed:
		return models.StatusFailed
	case errors > 0:
		return models.StatusPartialSuccess
	default:
		return models.StatusSuccess
	}
}

// NewAudit builds the audit record for a summarized run.
func NewAudit(id string, s models.Summary, opts models.RunOptions, profileID string) models.AuditRecord {
	s.AuditID = id
	audit := models.AuditRecord{
		ID:         id,
		Operation:  s.Operation,
		ProfileID:  profileID,
		Status:     s.Status,
		Reason:     s.Reason,
		DurationMs: s.Duration.Milliseconds(),
		Metrics:    s,
		Warnings:   s.Warnings,
		Errors:     s.ErrorMessages,
		Options:    opts,
		CreatedAt:  s.FinishedAt,
	}
	if s.VersionID != "" {
		vid := s.VersionID
		audit.VersionID = &vid
	}
	return audit
}

// ExitCode maps a run status to a process exit code.
// A partial success is not a process failure.
func ExitCode(status models.VersionStatus) int {
	switch status {
	case models.StatusSuccess, models.StatusPartialSuccess:
		return 0
	case models.StatusAborted:
		return 2
	default:
		return 1
	}
}
