package models

// VersionStatus is the overall outcome of a run.
type VersionStatus string

const (
	StatusSuccess        VersionStatus = "success"
	StatusPartialSuccess VersionStatus = "partial_success"
	StatusFailed         VersionStatus = "failed"
	StatusAborted        VersionStatus = "aborted"
)

// ResourceType identifies the kind of platform object.
type ResourceType string

const (
	ResourceWorkflow   ResourceType = "workflow"
	ResourceCredential ResourceType = "credential"
	ResourceTag        ResourceType = "tag"
)

// ResourceTypes lists the supported types in dependency order: tags and credentials
// are referenced by workflows, so they come first.
var ResourceTypes = []ResourceType{ResourceTag, ResourceCredential, ResourceWorkflow}

// IsValid reports whether t is a supported resource type.
func (t ResourceType) IsValid() bool {
	switch t {
	case ResourceWorkflow, ResourceCredential, ResourceTag:
		return true
	default:
		return false
	}
}

// Rank orders resource types for deterministic dispatch.
func (t ResourceType) Rank() int {
	for i, rt := range ResourceTypes {
		if rt == t {
			return i
		}
	}
	return len(ResourceTypes)
}

// ObjectStatus is the per-object outcome within a run.
type ObjectStatus string

const (
	ObjectSuccess ObjectStatus = "success"
	ObjectSkipped ObjectStatus = "skipped"
	ObjectError   ObjectStatus = "error"
)

// SkipReason explains a skipped object.
type SkipReason string

const (
	SkipNone              SkipReason = "none"
	SkipValidationFailed  SkipReason = "validation_failed"
	SkipDuplicate         SkipReason = "duplicate"
	SkipDependencyMissing SkipReason = "dependency_missing"
	SkipUnsupported       SkipReason = "unsupported"
)

// OperationType identifies what produced a Version or AuditRecord.
type OperationType string

const (
	OpBackup        OperationType = "backup"
	OpRestore       OperationType = "restore"
	OpSync          OperationType = "sync"
	OpCleanup       OperationType = "cleanup"
	OpProfileChange OperationType = "profile_change"
)

// Action is the mutation applied (or planned) at the target for one object.
type Action string

const (
	ActionNone   Action = "none"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)
