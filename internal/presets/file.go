package presets

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	irv1 "github.com/poiley/arr-quality/internal/ir/v1"
)

// File is the YAML desired-state format. Every field is optional: unset
// fields keep the value of the base preset.
//
//	preset: 4k-minimal
//	customFormat:
//	  name: Prefer x265
//	  specifications:
//	    - type: ReleaseTitleSpecification
//	      name: x265/HEVC
//	      value: '[xh]\.?265|HEVC'
//	qualityProfile:
//	  name: 4K Minimal
//	  template: Ultra-HD
//	  allowedGroups: [WEB 1080p, WEB 2160p]
//	  cutoff: 1003
//	  formatScore: 100
type File struct {
	// Preset is the base desired state (default: DefaultPreset)
	Preset string `yaml:"preset,omitempty"`

	CustomFormat   *CustomFormatOverrides   `yaml:"customFormat,omitempty"`
	QualityProfile *QualityProfileOverrides `yaml:"qualityProfile,omitempty"`
}

// CustomFormatOverrides replaces parts of the base custom format
type CustomFormatOverrides struct {
	Name                string `yaml:"name,omitempty"`
	IncludeWhenRenaming *bool  `yaml:"includeWhenRenaming,omitempty"`

	// Specifications replaces the whole list when set
	Specifications []FormatSpec `yaml:"specifications,omitempty"`
}

// FormatSpec is a single format matching rule
type FormatSpec struct {
	Type     string `yaml:"type"`
	Name     string `yaml:"name"`
	Negate   bool   `yaml:"negate,omitempty"`
	Required bool   `yaml:"required,omitempty"`
	Value    string `yaml:"value"`
}

// QualityProfileOverrides replaces parts of the base quality profile
type QualityProfileOverrides struct {
	Name     string `yaml:"name,omitempty"`
	Template string `yaml:"template,omitempty"`

	// AllowedGroups replaces the whole list when set
	AllowedGroups []string `yaml:"allowedGroups,omitempty"`

	Cutoff      *int `yaml:"cutoff,omitempty"`
	FormatScore *int `yaml:"formatScore,omitempty"`
}

// Load decodes a YAML desired-state file, applies it over its base preset
// and validates the result. Unknown keys are rejected.
func Load(r io.Reader) (irv1.DesiredState, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return irv1.DesiredState{}, fmt.Errorf("failed to parse desired state: %w", err)
	}

	state, err := f.Expand()
	if err != nil {
		return irv1.DesiredState{}, err
	}
	if err := Validate(state); err != nil {
		return irv1.DesiredState{}, err
	}
	return state, nil
}

// LoadFile loads a YAML desired-state file from path.
func LoadFile(path string) (irv1.DesiredState, error) {
	f, err := os.Open(path)
	if err != nil {
		return irv1.DesiredState{}, fmt.Errorf("failed to open desired state: %w", err)
	}
	defer func() { _ = f.Close() }()

	state, err := Load(f)
	if err != nil {
		return irv1.DesiredState{}, fmt.Errorf("%s: %w", path, err)
	}
	state.Source = path
	return state, nil
}

// Expand applies the file's overrides to its base preset.
func (f File) Expand() (irv1.DesiredState, error) {
	base := f.Preset
	if base == "" {
		base = DefaultPreset
	}
	state, ok := Get(base)
	if !ok {
		return irv1.DesiredState{}, fmt.Errorf("unknown preset %q (available: %v)", base, Names())
	}

	if cf := f.CustomFormat; cf != nil {
		if cf.Name != "" {
			state.CustomFormat.Name = cf.Name
		}
		if cf.IncludeWhenRenaming != nil {
			state.CustomFormat.IncludeWhenRenaming = *cf.IncludeWhenRenaming
		}
		if cf.Specifications != nil {
			state.CustomFormat.Specifications = make([]irv1.FormatSpecIR, 0, len(cf.Specifications))
			for _, s := range cf.Specifications {
				state.CustomFormat.Specifications = append(state.CustomFormat.Specifications, irv1.FormatSpecIR{
					Type:     s.Type,
					Name:     s.Name,
					Negate:   s.Negate,
					Required: s.Required,
					Value:    s.Value,
				})
			}
		}
	}

	if qp := f.QualityProfile; qp != nil {
		if qp.Name != "" {
			state.QualityProfile.Name = qp.Name
		}
		if qp.Template != "" {
			state.QualityProfile.Template = qp.Template
		}
		if qp.AllowedGroups != nil {
			state.QualityProfile.AllowedGroups = append([]string(nil), qp.AllowedGroups...)
		}
		if qp.Cutoff != nil {
			state.QualityProfile.Cutoff = *qp.Cutoff
		}
		if qp.FormatScore != nil {
			state.QualityProfile.FormatScore = *qp.FormatScore
		}
	}

	return state, nil
}

// Validate rejects desired states that cannot produce a usable profile.
func Validate(state irv1.DesiredState) error {
	cf := state.CustomFormat
	if cf.Name == "" {
		return errors.New("custom format name is required")
	}
	if len(cf.Specifications) == 0 {
		return fmt.Errorf("custom format %q needs at least one specification", cf.Name)
	}
	for i, s := range cf.Specifications {
		if s.Type == "" || s.Name == "" {
			return fmt.Errorf("custom format %q: specification %d needs a type and a name", cf.Name, i)
		}
	}

	qp := state.QualityProfile
	if qp.Name == "" {
		return errors.New("quality profile name is required")
	}
	if qp.Template == "" {
		return fmt.Errorf("quality profile %q needs a template", qp.Name)
	}
	if len(qp.AllowedGroups) == 0 {
		return fmt.Errorf("quality profile %q would allow nothing", qp.Name)
	}
	return nil
}
