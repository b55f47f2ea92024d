package checks

import (
	"context"

	"flow-vault/core/compat"
)

// VersionReader reads a platform's version tag.
type VersionReader interface {
	PlatformVersion(ctx context.Context) (string, error)
}

// PlatformReport is the reachability of one profile's platform.
type PlatformReport struct {
	Profile   string `json:"profile"`
	URL       string `json:"url"`
	Reachable bool   `json:"reachable"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CheckPlatform asks the platform for its version and validates the tag.
func CheckPlatform(ctx context.Context, name, url string, p VersionReader) PlatformReport {
	report := PlatformReport{Profile: name, URL: url}
	tag, err := p.PlatformVersion(ctx)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Reachable = true
	report.Version = tag
	if _, err := compat.Parse(tag); err != nil {
		report.Error = err.Error()
	}
	return report
}
