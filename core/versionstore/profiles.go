package versionstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flow-vault/core/errs"
	"flow-vault/core/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoProfiles is returned when an operation needs a profile and none exist.
var ErrNoProfiles = fmt.Errorf("%w: no profiles configured", errs.ErrNotFound)

// CreateProfile inserts p. The first profile becomes the default.
func (s *Store) CreateProfile(ctx context.Context, p *models.Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.URL == "" {
		return fmt.Errorf("%w: profile name and url are required", errs.ErrValidation)
	}
	if p.ID == "" {
		p.ID = s.ids.New()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Profile{}).Where("name = ?", p.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: profile %q already exists", errs.ErrValidation, p.Name)
		}
		if err := tx.Model(&models.Profile{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			p.IsDefault = true
		} else if p.IsDefault {
			if err := clearDefault(tx); err != nil {
				return err
			}
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return s.profileAudit(tx, p.ID, "created profile "+p.Name)
	})
	if err != nil {
		return wrapProfileErr("create profile", err)
	}

	s.logger.Info("Profile created", zap.String("profile", p.Name), zap.Bool("default", p.IsDefault))
	return nil
}

// ListProfiles returns all profiles ordered by name.
func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&profiles).Error; err != nil {
		return nil, errs.Persistence("list profiles", err)
	}
	return profiles, nil
}

// GetProfile looks a profile up by name or id.
func (s *Store) GetProfile(ctx context.Context, nameOrID string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("name = ? OR id = ?", nameOrID, nameOrID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: profile %q", errs.ErrNotFound, nameOrID)
	}
	if err != nil {
		return nil, errs.Persistence("get profile", err)
	}
	return &p, nil
}

// ResolveProfile returns the named profile, or the default when name is empty.
func (s *Store) ResolveProfile(ctx context.Context, name string) (*models.Profile, error) {
	if name != "" {
		return s.GetProfile(ctx, name)
	}

	var p models.Profile
	err := s.db.WithContext(ctx).Where("is_default = ?", true).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoProfiles
	}
	if err != nil {
		return nil, errs.Persistence("resolve profile", err)
	}
	return &p, nil
}

// SetDefault makes the named profile the only default.
func (s *Store) SetDefault(ctx context.Context, nameOrID string) error {
	p, err := s.GetProfile(ctx, nameOrID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearDefault(tx); err != nil {
			return err
		}
		if err := tx.Model(&models.Profile{}).Where("id = ?", p.ID).Update("is_default", true).Error; err != nil {
			return err
		}
		return s.profileAudit(tx, p.ID, "set default profile "+p.Name)
	})
	return wrapProfileErr("set default profile", err)
}

// DeleteProfile removes a profile. When it was the default, the oldest remaining
// profile becomes the default.
func (s *Store) DeleteProfile(ctx context.Context, nameOrID string) error {
	p, err := s.GetProfile(ctx, nameOrID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Profile{}, "id = ?", p.ID).Error; err != nil {
			return err
		}
		if p.IsDefault {
			var next models.Profile
			err := tx.Order("created_at ASC").Order("name ASC").First(&next).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
			case err != nil:
				return err
			default:
				if err := tx.Model(&models.Profile{}).Where("id = ?", next.ID).Update("is_default", true).Error; err != nil {
					return err
				}
			}
		}
		return s.profileAudit(tx, p.ID, "removed profile "+p.Name)
	})
	return wrapProfileErr("delete profile", err)
}

func clearDefault(tx *gorm.DB) error {
	return tx.Model(&models.Profile{}).Where("is_default = ?", true).Update("is_default", false).Error
}

func (s *Store) profileAudit(tx *gorm.DB, profileID, reason string) error {
	a := models.AuditRecord{
		Operation: models.OpProfileChange,
		ProfileID: profileID,
		Status:    models.StatusSuccess,
		Reason:    reason,
	}
	s.stampAudit(&a)
	a.Metrics = models.Summary{Operation: models.OpProfileChange, Status: models.StatusSuccess, AuditID: a.ID}
	return tx.Create(&a).Error
}

func wrapProfileErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrValidation) || errors.Is(err, errs.ErrNotFound) {
		return err
	}
	return errs.Persistence(op, err)
}
