package reconcile

import (
	"k8s.io/utils/ptr"

	"github.com/poiley/arr-quality/internal/adapters/shared"
	irv1 "github.com/poiley/arr-quality/internal/ir/v1"
)

func group(name string, allowed bool, subs ...shared.QualityProfileItem) shared.QualityProfileItem {
	if subs == nil {
		subs = []shared.QualityProfileItem{}
	}
	return shared.QualityProfileItem{Name: ptr.To(name), Allowed: allowed, Items: subs}
}

func leaf(allowed bool) shared.QualityProfileItem {
	return shared.QualityProfileItem{Allowed: allowed, Items: []shared.QualityProfileItem{}}
}

// ultraHD is the template profile from the end-to-end scenarios.
func ultraHD() shared.QualityProfileResource {
	return shared.QualityProfileResource{
		ID:   ptr.To(7),
		Name: "Ultra-HD",
		Items: []shared.QualityProfileItem{
			group("WEB 1080p", false, leaf(false)),
			group("WEB 2160p", false, leaf(false)),
			group("Other", true),
		},
	}
}

func testDesired() irv1.DesiredState {
	return irv1.DesiredState{
		CustomFormat: irv1.CustomFormatIR{
			Name: "Prefer x265",
			Specifications: []irv1.FormatSpecIR{
				{
					Type:  "ReleaseTitleSpecification",
					Name:  "x265/HEVC",
					Value: `[xh]\.?265|HEVC`,
				},
			},
		},
		QualityProfile: irv1.QualityProfileIR{
			Name:          "4K Minimal",
			Template:      "Ultra-HD",
			AllowedGroups: []string{"WEB 1080p", "WEB 2160p"},
			Cutoff:        1003,
			FormatScore:   100,
		},
	}
}
