package retention

import (
	"sort"
	"time"

	"flow-vault/core/models"
)

const (
	ReasonLatest    = "latest"
	ReasonKeepLast  = "keep_last"
	ReasonNewerThan = "keep_newer_than"
	ReasonTagged    = "keep_tagged"
)

// Policy is a set of keep rules. Zero values disable a rule.
type Policy struct {
	// KeepLast retains the N most recent Versions.
	KeepLast int
	// KeepNewerThan retains Versions younger than this age.
	KeepNewerThan time.Duration
	// KeepTagged retains Versions carrying any of these protection tags.
	KeepTagged []string
}

// IsEmpty reports whether no rule is set.
func (p Policy) IsEmpty() bool {
	return p.KeepLast <= 0 && p.KeepNewerThan <= 0 && len(p.KeepTagged) == 0
}

// Decision is the outcome for one Version.
type Decision struct {
	Version models.Version `json:"version"`
	// Reasons lists the rules that retained the Version; empty when eligible.
	Reasons []string `json:"reasons,omitempty"`
}

// Result partitions Versions, newest first within each list.
type Result struct {
	Retain   []Decision `json:"retain"`
	Eligible []Decision `json:"eligible"`
}

// EligibleIDs returns the ids of Versions eligible for deletion.
func (r Result) EligibleIDs() []string {
	ids := make([]string, 0, len(r.Eligible))
	for _, d := range r.Eligible {
		ids = append(ids, d.Version.ID)
	}
	return ids
}

// Evaluate applies policy to versions as of now.
func Evaluate(versions []models.Version, policy Policy, now time.Time) Result {
	sorted := make([]models.Version, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	res := Result{Retain: []Decision{}, Eligible: []Decision{}}
	for i, v := range sorted {
		var reasons []string
		if i == 0 {
			reasons = append(reasons, ReasonLatest)
		}
		if policy.KeepLast > 0 && i < policy.KeepLast {
			reasons = append(reasons, ReasonKeepLast)
		}
		if policy.KeepNewerThan > 0 && now.Sub(v.CreatedAt) < policy.KeepNewerThan {
			reasons = append(reasons, ReasonNewerThan)
		}
		if len(policy.KeepTagged) > 0 && v.HasTag(policy.KeepTagged...) {
			reasons = append(reasons, ReasonTagged)
		}

		d := Decision{Version: v, Reasons: reasons}
		if len(reasons) > 0 {
			res.Retain = append(res.Retain, d)
		} else {
			res.Eligible = append(res.Eligible, d)
		}
	}
	return res
}
