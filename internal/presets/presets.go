// Package presets provides built-in desired states and the YAML file format
// that overrides them.
package presets

import (
	"sort"

	irv1 "github.com/poiley/arr-quality/internal/ir/v1"
)

// Preset is a named, built-in desired state
type Preset struct {
	Name        string
	Description string
	State       irv1.DesiredState
}

// DefaultPreset is used when no preset is specified
const DefaultPreset = "4k-minimal"

// Presets contains all built-in presets
var Presets = map[string]Preset{
	"4k-minimal": {
		Name:        "4k-minimal",
		Description: "WEB 1080p/2160p only, x265 preferred, cloned from Ultra-HD",
		State: irv1.DesiredState{
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
		},
	},
}

// Get returns a copy of the named preset's desired state
func Get(name string) (irv1.DesiredState, bool) {
	preset, ok := Presets[name]
	if !ok {
		return irv1.DesiredState{}, false
	}
	state := copyState(preset.State)
	state.Source = "preset:" + name
	return state, true
}

// Names returns all available preset names, sorted
func Names() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// copyState copies the slices so callers cannot change the built-in presets
func copyState(in irv1.DesiredState) irv1.DesiredState {
	out := in
	out.CustomFormat.Specifications = append([]irv1.FormatSpecIR(nil), in.CustomFormat.Specifications...)
	out.QualityProfile.AllowedGroups = append([]string(nil), in.QualityProfile.AllowedGroups...)
	return out
}
