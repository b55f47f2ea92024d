// Package compat implements the pre-flight compatibility gate for restore and sync.
//
// A source Version may be applied to a target platform only when both report the
// same major and minor version; patch releases are interchangeable.
package compat

import (
	"fmt"
	"strings"

	"flow-vault/core/errs"

	"github.com/Masterminds/semver/v3"
)

// Decision is the outcome of a compatibility check.
type Decision struct {
	// Proceed is true when the restore or sync may mutate the target.
	Proceed bool
	// Reason describes both versions and why the check passed or failed.
	Reason string
	// Source and Target are the parsed tags.
	Source *semver.Version
	Target *semver.Version
}

// Err returns nil for a proceed decision and an error wrapping
// errs.ErrCompatibilityMismatch otherwise.
func (d Decision) Err() error {
	if d.Proceed {
		return nil
	}
	return fmt.Errorf("%w: %s", errs.ErrCompatibilityMismatch, d.Reason)
}

// Parse parses a platform version tag as strict major.minor.patch.
// A leading "v" is accepted.
func Parse(tag string) (*semver.Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(tag), "v")
	v, err := semver.StrictNewVersion(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", errs.ErrInvalidVersionFormat, tag, err)
	}
	return v, nil
}

// Check compares the version a snapshot was taken from with the target platform version.
func Check(sourceTag, targetTag string) (Decision, error) {
	source, err := Parse(sourceTag)
	if err != nil {
		return Decision{}, fmt.Errorf("source: %w", err)
	}
	target, err := Parse(targetTag)
	if err != nil {
		return Decision{}, fmt.Errorf("target: %w", err)
	}

	d := Decision{Source: source, Target: target}
	if source.Major() == target.Major() && source.Minor() == target.Minor() {
		d.Proceed = true
		d.Reason = fmt.Sprintf("source %s and target %s share %d.%d", source, target, source.Major(), source.Minor())
		return d, nil
	}

	d.Reason = fmt.Sprintf("source version %s is not compatible with target version %s (major.minor must match)", source, target)
	return d, nil
}
