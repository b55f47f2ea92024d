package models

import (
	"sort"
	"time"
)

// RunOptions is the exact configuration a run was executed with.
// It is serialized into both the Version and the AuditRecord.
type RunOptions struct {
	// Strategy is the merge strategy name (source-wins, target-wins, update-existing, add-missing).
	Strategy string `json:"strategy,omitempty"`
	// Concurrency bounds parallel reconcile calls.
	Concurrency int `json:"concurrency,omitempty"`
	// MaxAttempts bounds attempts per object, including the first.
	MaxAttempts int `json:"max_attempts,omitempty"`
	// Types restricts the run to these resource types; empty means all.
	Types []ResourceType `json:"types,omitempty"`
	// Tags are protection tags stamped on the resulting Version.
	Tags []string `json:"tags,omitempty"`
	// DryRun classifies objects without mutating the target.
	DryRun bool `json:"dry_run,omitempty"`
}

// IncludesType reports whether t passes the Types filter.
func (o RunOptions) IncludesType(t ResourceType) bool {
	if len(o.Types) == 0 {
		return true
	}
	for _, want := range o.Types {
		if want == t {
			return true
		}
	}
	return false
}

// TypeCounts are the per-resource-type tallies of a run.
type TypeCounts struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// ChangeCounts are the comparator results against a baseline.
type ChangeCounts struct {
	BaselineVersionID string `json:"baseline_version_id,omitempty"`
	Added             int    `json:"added"`
	Modified          int    `json:"modified"`
	Removed           int    `json:"removed"`
	Unchanged         int    `json:"unchanged"`
}

// Summary is the folded result of one run (the VersionReportSummary).
type Summary struct {
	Operation OperationType `json:"operation"`
	Status    VersionStatus `json:"status"`
	// Reason explains a failed or aborted status.
	Reason string `json:"reason,omitempty"`

	Total     int `json:"total"`
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`

	ByType map[ResourceType]TypeCounts `json:"by_type,omitempty"`

	APICalls       int   `json:"api_calls"`
	Retries        int   `json:"retries"`
	TotalLatencyMs int64 `json:"total_latency_ms"`
	AvgLatencyMs   int64 `json:"avg_latency_ms"`

	Changes *ChangeCounts `json:"changes,omitempty"`

	Warnings      []string `json:"warnings,omitempty"`
	ErrorMessages []string `json:"error_messages,omitempty"`

	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`

	VersionID string `json:"version_id,omitempty"`
	AuditID   string `json:"audit_id,omitempty"`
}

// Version is one immutable snapshot produced by a run.
type Version struct {
	// ID is the opaque unique identifier (UUID).
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// CreatedAt is when the run started.
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	// Operation is the kind of run that produced this Version.
	Operation OperationType `gorm:"size:32;not null" json:"operation"`
	// ProfileID references the source profile (backup, sync) or the target (restore).
	ProfileID string `gorm:"size:36;index" json:"profile_id"`
	// TargetProfileID references the target profile for restore and sync.
	TargetProfileID string `gorm:"size:36" json:"target_profile_id,omitempty"`
	// SourceVersionID references the Version a restore read from.
	SourceVersionID string `gorm:"size:36" json:"source_version_id,omitempty"`
	// PlatformVersion is the source platform's semantic version tag.
	PlatformVersion string `gorm:"size:64" json:"platform_version"`
	// ToolVersion is the version of this tool that produced the run.
	ToolVersion string `gorm:"size:64" json:"tool_version"`
	// Options is the serialized run configuration.
	Options RunOptions `gorm:"serializer:json;type:text" json:"options"`
	// Summary holds the run metrics.
	Summary Summary `gorm:"serializer:json;type:text" json:"summary"`
	// Status is the overall outcome.
	Status VersionStatus `gorm:"size:32;index;not null" json:"status"`
	// Tags are explicit protection tags consulted by the keep-tagged retention rule.
	Tags []string `gorm:"serializer:json;type:text" json:"tags,omitempty"`
	// Records are the objects owned by this Version.
	Records []ObjectRecord `gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE" json:"records,omitempty"`
}

// HasTag reports whether the Version carries any of the given protection tags.
func (v Version) HasTag(tags ...string) bool {
	for _, have := range v.Tags {
		for _, want := range tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// ObjectReport is the outcome for one object within one run.
type ObjectReport struct {
	ResourceType ResourceType `gorm:"size:32" json:"resource_type"`
	ResourceID   string       `gorm:"size:191" json:"resource_id"`
	Status       ObjectStatus `gorm:"size:16" json:"status"`
	Message      string       `gorm:"type:text" json:"message,omitempty"`
	SkipReason   SkipReason   `gorm:"size:32" json:"skip_reason"`
	ErrorDetail  string       `gorm:"type:text" json:"error_detail,omitempty"`
	Action       Action       `gorm:"size:16" json:"action"`
	Attempts     int          `json:"attempts"`
	LatencyMs    int64        `json:"latency_ms"`
	Timestamp    time.Time    `json:"timestamp"`
}

// ObjectRecord is one workflow, credential or tag captured within a Version.
type ObjectRecord struct {
	VersionID    string         `gorm:"primaryKey;size:36" json:"version_id"`
	ResourceType ResourceType   `gorm:"primaryKey;size:32" json:"resource_type"`
	ResourceID   string         `gorm:"primaryKey;size:191" json:"resource_id"`
	Name         string         `gorm:"size:255" json:"name"`
	Data         map[string]any `gorm:"serializer:json;type:longtext" json:"data"`
	Report       ObjectReport   `gorm:"embedded;embeddedPrefix:report_" json:"report"`
}

// SortRecords orders records by resource type rank, then id.
func SortRecords(records []ObjectRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.ResourceType != b.ResourceType {
			return a.ResourceType.Rank() < b.ResourceType.Rank()
		}
		return a.ResourceID < b.ResourceID
	})
}

// AuditRecord is the permanent record of one operation.
type AuditRecord struct {
	ID         string        `gorm:"primaryKey;size:36" json:"id"`
	VersionID  *string       `gorm:"size:36;index" json:"version_id,omitempty"`
	Operation  OperationType `gorm:"size:32;index;not null" json:"operation"`
	ProfileID  string        `gorm:"size:36;index" json:"profile_id,omitempty"`
	Status     VersionStatus `gorm:"size:32;not null" json:"status"`
	Reason     string        `gorm:"type:text" json:"reason,omitempty"`
	DurationMs int64         `json:"duration_ms"`
	Metrics    Summary       `gorm:"serializer:json;type:text" json:"metrics"`
	Warnings   []string      `gorm:"serializer:json;type:text" json:"warnings,omitempty"`
	Errors     []string      `gorm:"serializer:json;type:text" json:"errors,omitempty"`
	Options    RunOptions    `gorm:"serializer:json;type:text" json:"options"`
	CreatedAt  time.Time     `gorm:"index" json:"created_at"`
}

// Profile is one remote platform instance the engine can talk to.
type Profile struct {
	ID   string `gorm:"primaryKey;size:36" json:"id"`
	Name string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	URL  string `gorm:"size:512;not null" json:"url"`
	// Credential is the age-armored API key. It is never serialized to JSON.
	Credential string    `gorm:"type:text" json:"-"`
	IsDefault  bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
