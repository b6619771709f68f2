package reconcile

import (
	"github.com/poiley/arr-quality/internal/adapters/shared"
)

// Score thresholds written into every derived profile: accept any score,
// never gate the cutoff on score, and upgrade only for a score of at least 1.
const (
	DerivedMinFormatScore        = 0
	DerivedCutoffFormatScore     = 0
	DerivedMinUpgradeFormatScore = 1
)

// DeriveParams describes the profile to derive from a template.
type DeriveParams struct {
	// Name of the new profile
	Name string

	// AllowedGroups are the item names left allowed, with all their sub-items
	AllowedGroups []string

	// Cutoff is the quality or group ID where upgrades stop
	Cutoff int

	// FormatID, FormatName and FormatScore form the profile's only score entry
	FormatID    int
	FormatName  string
	FormatScore int
}

// DeriveProfile clones template into a create request for a new profile.
//
// Only the name, upgradeAllowed, cutoff, the allowed flags of the items and
// the score settings change; every other member of the template is kept.
// The template's identity is dropped and its own score entries are replaced,
// not merged. template is not modified.
func DeriveProfile(template shared.QualityProfileResource, p DeriveParams) shared.QualityProfileResource {
	out := template.DeepCopy()

	out.ID = nil
	out.Name = p.Name
	out.UpgradeAllowed = true
	out.Cutoff = p.Cutoff

	allowed := make(map[string]struct{}, len(p.AllowedGroups))
	for _, name := range p.AllowedGroups {
		allowed[name] = struct{}{}
	}

	// Groups hold leaf qualities only, so one level of nesting is enough.
	// Anonymous leaves cannot match a name and end up disallowed.
	for i := range out.Items {
		item := &out.Items[i]
		ok := false
		if item.Name != nil {
			_, ok = allowed[*item.Name]
		}
		setAllowed(item, ok)
	}

	out.FormatItems = []shared.ProfileFormatItem{
		{Format: p.FormatID, Name: p.FormatName, Score: p.FormatScore},
	}
	out.MinFormatScore = DerivedMinFormatScore
	out.CutoffFormatScore = DerivedCutoffFormatScore
	out.MinUpgradeFormatScore = DerivedMinUpgradeFormatScore

	return *out
}

// setAllowed sets the flag on a group and every quality inside it.
func setAllowed(item *shared.QualityProfileItem, allowed bool) {
	item.Allowed = allowed
	for j := range item.Items {
		item.Items[j].Allowed = allowed
	}
}
