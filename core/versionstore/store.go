package versionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flow-vault/core/clock"
	"flow-vault/core/errs"
	"flow-vault/core/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordBatchSize bounds rows per INSERT when appending object records.
const recordBatchSize = 200

// Store is the GORM-backed version store.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
	clock  clock.Clock
	ids    clock.IDGenerator
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(g clock.IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// New creates a store over db.
func New(db *gorm.DB, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		db:     db,
		logger: logger,
		clock:  clock.Real{},
		ids:    clock.UUID{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying handle for schema inspection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// AutoMigrate creates or updates the store tables.
func (s *Store) AutoMigrate() error {
	err := s.db.AutoMigrate(&models.Version{}, &models.ObjectRecord{}, &models.AuditRecord{}, &models.Profile{})
	return errs.Persistence("migrate", err)
}

// NewID returns a fresh identifier from the store's generator.
func (s *Store) NewID() string {
	return s.ids.New()
}

// VersionFilter narrows ListVersions. Zero fields do not filter.
type VersionFilter struct {
	ProfileID string
	Operation models.OperationType
	Statuses  []models.VersionStatus
	Since     time.Time
	Until     time.Time
	Limit     int
}

func (f VersionFilter) apply(q *gorm.DB) *gorm.DB {
	if f.ProfileID != "" {
		q = q.Where("profile_id = ?", f.ProfileID)
	}
	if f.Operation != "" {
		q = q.Where("operation = ?", f.Operation)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		q = q.Where("created_at < ?", f.Until)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q
}

// CreateVersion inserts a Version without its records and returns its id.
// An id is assigned when v.ID is empty.
func (s *Store) CreateVersion(ctx context.Context, v *models.Version) (string, error) {
	s.stamp(v)
	if err := s.db.WithContext(ctx).Omit("Records").Create(v).Error; err != nil {
		return "", errs.Persistence("create version", err)
	}
	return v.ID, nil
}

// AppendObjectRecords inserts records owned by versionID.
func (s *Store) AppendObjectRecords(ctx context.Context, versionID string, records []models.ObjectRecord) error {
	return errs.Persistence("append object records", appendRecords(s.db.WithContext(ctx), versionID, records))
}

func appendRecords(tx *gorm.DB, versionID string, records []models.ObjectRecord) error {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		records[i].VersionID = versionID
	}
	return tx.CreateInBatches(records, recordBatchSize).Error
}

// WriteAuditRecord inserts one audit record. An id is assigned when empty.
func (s *Store) WriteAuditRecord(ctx context.Context, a *models.AuditRecord) error {
	s.stampAudit(a)
	return errs.Persistence("write audit record", s.db.WithContext(ctx).Create(a).Error)
}

// Commit writes a Version, its records and its audit in one transaction.
func (s *Store) Commit(ctx context.Context, v *models.Version, records []models.ObjectRecord, a *models.AuditRecord) error {
	s.stamp(v)
	if a != nil {
		s.stampAudit(a)
		a.VersionID = &v.ID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Records").Create(v).Error; err != nil {
			return fmt.Errorf("failed to create version: %w", err)
		}
		if err := appendRecords(tx, v.ID, records); err != nil {
			return fmt.Errorf("failed to append records: %w", err)
		}
		if a != nil {
			if err := tx.Create(a).Error; err != nil {
				return fmt.Errorf("failed to write audit: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return errs.Persistence("commit", err)
	}

	s.logger.Debug("Committed version",
		zap.String("version_id", v.ID),
		zap.Int("records", len(records)),
		zap.String("status", string(v.Status)),
	)
	return nil
}

// ListVersions returns Versions matching f, newest first, without records.
func (s *Store) ListVersions(ctx context.Context, f VersionFilter) ([]models.Version, error) {
	var versions []models.Version
	q := f.apply(s.db.WithContext(ctx).Model(&models.Version{})).Order("created_at DESC").Order("id DESC")
	if err := q.Find(&versions).Error; err != nil {
		return nil, errs.Persistence("list versions", err)
	}
	return versions, nil
}

// LatestVersion returns the newest Version matching f.
func (s *Store) LatestVersion(ctx context.Context, f VersionFilter) (*models.Version, error) {
	f.Limit = 1
	versions, err := s.ListVersions(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: no matching version", errs.ErrNotFound)
	}
	return s.GetVersion(ctx, versions[0].ID)
}

// GetVersion returns a Version with its records ordered by dispatch order.
func (s *Store) GetVersion(ctx context.Context, id string) (*models.Version, error) {
	var v models.Version
	err := s.db.WithContext(ctx).
		Preload("Records").
		First(&v, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: version %s", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, errs.Persistence("get version", err)
	}
	models.SortRecords(v.Records)
	return &v, nil
}

// AuditFilter narrows ListAudits. Zero fields do not filter.
type AuditFilter struct {
	VersionID string
	ProfileID string
	Operation models.OperationType
	Limit     int
}

// ListAudits returns audit records matching f, newest first.
func (s *Store) ListAudits(ctx context.Context, f AuditFilter) ([]models.AuditRecord, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditRecord{})
	if f.VersionID != "" {
		q = q.Where("version_id = ?", f.VersionID)
	}
	if f.ProfileID != "" {
		q = q.Where("profile_id = ?", f.ProfileID)
	}
	if f.Operation != "" {
		q = q.Where("operation = ?", f.Operation)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var audits []models.AuditRecord
	if err := q.Order("created_at DESC").Order("id DESC").Find(&audits).Error; err != nil {
		return nil, errs.Persistence("list audits", err)
	}
	return audits, nil
}

// DeleteVersions removes Versions and their records, and writes audit in the same
// transaction. Audit records that reference deleted Versions are kept.
func (s *Store) DeleteVersions(ctx context.Context, ids []string, a *models.AuditRecord) (int64, error) {
	if a != nil {
		s.stampAudit(a)
	}

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ids) > 0 {
			if err := tx.Where("version_id IN ?", ids).Delete(&models.ObjectRecord{}).Error; err != nil {
				return fmt.Errorf("failed to delete records: %w", err)
			}
			res := tx.Where("id IN ?", ids).Delete(&models.Version{})
			if res.Error != nil {
				return fmt.Errorf("failed to delete versions: %w", res.Error)
			}
			deleted = res.RowsAffected
		}
		if a != nil {
			if err := tx.Create(a).Error; err != nil {
				return fmt.Errorf("failed to write audit: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, errs.Persistence("delete versions", err)
	}
	return deleted, nil
}

func (s *Store) stamp(v *models.Version) {
	if v.ID == "" {
		v.ID = s.ids.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.clock.Now()
	}
}

func (s *Store) stampAudit(a *models.AuditRecord) {
	if a.ID == "" {
		a.ID = s.ids.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.clock.Now()
	}
}
