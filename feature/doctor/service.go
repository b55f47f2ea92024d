package doctor

import (
	"context"
	"fmt"

	"flow-vault/core/models"
	"flow-vault/core/storage"
	"flow-vault/feature/doctor/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dialer opens a platform client for a profile.
type Dialer func(p models.Profile) (checks.VersionReader, error)

// Service runs doctor checks.
type Service struct {
	db       *gorm.DB
	client   storage.Client
	storage  storage.Config
	profiles checks.ProfileLister
	dial     Dialer
	logger   *zap.Logger
}

// NewService creates a new doctor service. client and dial may be nil.
func NewService(db *gorm.DB, client storage.Client, cfg storage.Config, profiles checks.ProfileLister, dial Dialer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:       db,
		client:   client,
		storage:  cfg,
		profiles: profiles,
		dial:     dial,
		logger:   logger,
	}
}

// Report is the combined result of every check.
type Report struct {
	Healthy   bool                    `json:"healthy"`
	Schema    *checks.SchemaReport    `json:"schema,omitempty"`
	Archive   *checks.ArchiveReport   `json:"archive,omitempty"`
	Profiles  *checks.ProfileReport   `json:"profiles,omitempty"`
	Platforms []checks.PlatformReport `json:"platforms,omitempty"`
	Errors    map[string]string       `json:"errors,omitempty"`
}

// CheckSchema verifies the store tables.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// CheckArchive verifies the bundle bucket.
func (s *Service) CheckArchive(ctx context.Context) (*checks.ArchiveReport, error) {
	return checks.CheckArchive(ctx, s.client, s.storage)
}

// FixArchive creates the bundle bucket.
func (s *Service) FixArchive(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("no storage client is configured")
	}
	return checks.FixArchive(ctx, s.client, s.storage, s.logger)
}

// CheckProfiles verifies profile configuration.
func (s *Service) CheckProfiles(ctx context.Context) (*checks.ProfileReport, error) {
	if s.profiles == nil {
		return nil, fmt.Errorf("no profile store is configured")
	}
	return checks.CheckProfiles(ctx, s.profiles)
}

// CheckPlatforms contacts the platform of every profile.
func (s *Service) CheckPlatforms(ctx context.Context) ([]checks.PlatformReport, error) {
	if s.profiles == nil || s.dial == nil {
		return nil, fmt.Errorf("platform checks are not configured")
	}
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	reports := make([]checks.PlatformReport, 0, len(profiles))
	for _, p := range profiles {
		client, err := s.dial(p)
		if err != nil {
			reports = append(reports, checks.PlatformReport{Profile: p.Name, URL: p.URL, Error: err.Error()})
			continue
		}
		r := checks.CheckPlatform(ctx, p.Name, p.URL, client)
		if !r.Reachable {
			s.logger.Warn("Platform unreachable", zap.String("profile", p.Name), zap.String("error", r.Error))
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// RunAll runs every check. A failing check is recorded in Errors and marks the
// report unhealthy; the remaining checks still run.
func (s *Service) RunAll(ctx context.Context) *Report {
	report := &Report{Healthy: true, Errors: make(map[string]string)}
	fail := func(check string, err error) {
		report.Healthy = false
		report.Errors[check] = err.Error()
	}

	if schema, err := s.CheckSchema(); err != nil {
		fail("schema", err)
	} else {
		report.Schema = schema
		report.Healthy = report.Healthy && schema.Matched
	}

	if archive, err := s.CheckArchive(ctx); err != nil {
		fail("archive", err)
	} else {
		report.Archive = archive
		report.Healthy = report.Healthy && archive.Status != "missing"
	}

	if profiles, err := s.CheckProfiles(ctx); err != nil {
		fail("profiles", err)
	} else {
		report.Profiles = profiles
		report.Healthy = report.Healthy && profiles.Status == "ok"
	}

	if platforms, err := s.CheckPlatforms(ctx); err != nil {
		fail("platforms", err)
	} else {
		report.Platforms = platforms
		for _, p := range platforms {
			if p.Error != "" {
				report.Healthy = false
			}
		}
	}

	if len(report.Errors) == 0 {
		report.Errors = nil
	}
	return report
}
