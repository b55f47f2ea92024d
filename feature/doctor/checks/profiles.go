package checks

import (
	"context"
	"fmt"

	"flow-vault/core/models"
)

// ProfileLister lists configured profiles.
type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
}

// ProfileReport is the result of a profile configuration check.
type ProfileReport struct {
	Count   int      `json:"count"`
	Default string   `json:"default"`
	Status  string   `json:"status"` // "ok", "error"
	Errors  []string `json:"errors"`
}

// CheckProfiles verifies that profiles exist, exactly one is the default and each
// carries a sealed credential.
func CheckProfiles(ctx context.Context, lister ProfileLister) (*ProfileReport, error) {
	profiles, err := lister.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	report := &ProfileReport{Count: len(profiles), Status: "ok", Errors: []string{}}
	defaults := 0
	for _, p := range profiles {
		if p.IsDefault {
			defaults++
			report.Default = p.Name
		}
		if p.Credential == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("profile %s has no credential", p.Name))
		}
	}

	switch {
	case len(profiles) == 0:
		report.Errors = append(report.Errors, "no profiles configured")
	case defaults == 0:
		report.Errors = append(report.Errors, "no default profile")
	case defaults > 1:
		report.Errors = append(report.Errors, fmt.Sprintf("%d profiles are marked default", defaults))
	}
	if len(report.Errors) > 0 {
		report.Status = "error"
	}
	return report, nil
}
