package v1

// CustomFormatIR represents a custom format definition
type CustomFormatIR struct {
	Name                string         `json:"name"`
	IncludeWhenRenaming bool           `json:"includeWhenRenaming,omitempty"`
	Specifications      []FormatSpecIR `json:"specifications"`
}

// FormatSpecIR represents a single format matching rule
type FormatSpecIR struct {
	Type     string `json:"type"` // ReleaseTitleSpecification, SourceSpecification, etc.
	Name     string `json:"name"`
	Negate   bool   `json:"negate,omitempty"`
	Required bool   `json:"required,omitempty"`
	Value    string `json:"value"`
}

// QualityProfileIR describes a profile cloned from an existing template
type QualityProfileIR struct {
	// Name of the profile to ensure
	Name string `json:"name"`

	// Template is the existing profile whose item hierarchy is cloned
	Template string `json:"template"`

	// AllowedGroups lists the item names left allowed; everything else is disallowed
	AllowedGroups []string `json:"allowedGroups"`

	// Cutoff is the quality (or group) ID where upgrades stop
	Cutoff int `json:"cutoff"`

	// FormatScore is the score given to the custom format in this profile
	FormatScore int `json:"formatScore"`
}
