package history

import (
	"context"
	"fmt"

	"flow-vault/core/models"
	"flow-vault/core/platform"
	"flow-vault/core/reconcile"
	"flow-vault/core/versionstore"

	"go.uber.org/zap"
)

// Reader is the read side of the version store.
type Reader interface {
	ListVersions(ctx context.Context, f versionstore.VersionFilter) ([]models.Version, error)
	GetVersion(ctx context.Context, id string) (*models.Version, error)
	ListAudits(ctx context.Context, f versionstore.AuditFilter) ([]models.AuditRecord, error)
}

// Service answers history queries.
type Service struct {
	store  Reader
	logger *zap.Logger
}

// NewService creates a new history service.
func NewService(store Reader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// ModifiedEntry is one object whose payload differs between two Versions.
type ModifiedEntry struct {
	Key    string   `json:"key"`
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// DiffReport compares two Versions.
type DiffReport struct {
	Base      string          `json:"base"`
	Current   string          `json:"current"`
	Added     []string        `json:"added"`
	Modified  []ModifiedEntry `json:"modified"`
	Removed   []string        `json:"removed"`
	Unchanged int             `json:"unchanged"`

	result reconcile.DiffResult
}

// Identical reports whether the Versions hold the same objects.
func (d DiffReport) Identical() bool {
	return d.result.IsEmpty()
}

// ListVersions returns Versions matching f, newest first.
func (s *Service) ListVersions(ctx context.Context, f versionstore.VersionFilter) ([]models.Version, error) {
	return s.store.ListVersions(ctx, f)
}

// GetVersion returns one Version with its records.
func (s *Service) GetVersion(ctx context.Context, id string) (*models.Version, error) {
	return s.store.GetVersion(ctx, id)
}

// ListAudits returns audit records matching f, newest first.
func (s *Service) ListAudits(ctx context.Context, f versionstore.AuditFilter) ([]models.AuditRecord, error) {
	return s.store.ListAudits(ctx, f)
}

// Diff compares the records of base against current.
func (s *Service) Diff(ctx context.Context, baseID, currentID string) (*DiffReport, error) {
	base, err := s.store.GetVersion(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load base version: %w", err)
	}
	current, err := s.store.GetVersion(ctx, currentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current version: %w", err)
	}

	result := reconcile.Diff(platform.FromRecords(base.Records), platform.FromRecords(current.Records))
	report := &DiffReport{
		Base:      base.ID,
		Current:   current.ID,
		Added:     keys(result.Added),
		Modified:  make([]ModifiedEntry, 0, len(result.Modified)),
		Removed:   keys(result.Removed),
		Unchanged: len(result.Unchanged),
		result:    result,
	}
	for _, m := range result.Modified {
		report.Modified = append(report.Modified, ModifiedEntry{
			Key:    m.Key.String(),
			Name:   m.Current.Name,
			Fields: m.Fields,
		})
	}

	s.logger.Debug("Compared versions",
		zap.String("base", base.ID),
		zap.String("current", current.ID),
		zap.Int("added", len(report.Added)),
		zap.Int("modified", len(report.Modified)),
		zap.Int("removed", len(report.Removed)),
	)
	return report, nil
}

func keys(objs []reconcile.Object) []string {
	out := make([]string, 0, len(objs))
	for _, obj := range objs {
		out = append(out, obj.Key().String())
	}
	return out
}
