package reconcile

import (
	"github.com/poiley/arr-quality/internal/adapters/shared"
)

// FindCustomFormat returns the first custom format named exactly name, or nil.
func FindCustomFormat(formats []shared.CustomFormatResource, name string) *shared.CustomFormatResource {
	for i := range formats {
		if formats[i].Name == name {
			return &formats[i]
		}
	}
	return nil
}

// FindQualityProfile returns the first quality profile named exactly name, or nil.
func FindQualityProfile(profiles []shared.QualityProfileResource, name string) *shared.QualityProfileResource {
	for i := range profiles {
		if profiles[i].Name == name {
			return &profiles[i]
		}
	}
	return nil
}
