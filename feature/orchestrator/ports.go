package orchestrator

import (
	"context"

	"flow-vault/core/models"
	"flow-vault/core/reconcile"
	"flow-vault/core/versionstore"
)

// Platform is one remote platform instance.
type Platform interface {
	reconcile.Source
	reconcile.Target
	PlatformVersion(ctx context.Context) (string, error)
}

// Endpoint is a resolved profile with its platform client.
type Endpoint struct {
	Profile  models.Profile
	Platform Platform
}

// Store is the part of the version store a run needs.
type Store interface {
	GetVersion(ctx context.Context, id string) (*models.Version, error)
	LatestVersion(ctx context.Context, f versionstore.VersionFilter) (*models.Version, error)
	ListVersions(ctx context.Context, f versionstore.VersionFilter) ([]models.Version, error)
	Commit(ctx context.Context, v *models.Version, records []models.ObjectRecord, a *models.AuditRecord) error
	WriteAuditRecord(ctx context.Context, a *models.AuditRecord) error
	DeleteVersions(ctx context.Context, ids []string, a *models.AuditRecord) (int64, error)
}

// Archive exports backup bundles. It is optional.
type Archive interface {
	Export(ctx context.Context, v models.Version, records []models.ObjectRecord) (string, error)
	Remove(ctx context.Context, versionIDs []string) error
}
