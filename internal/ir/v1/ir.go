// Package v1 contains the Intermediate Representation (IR) types for arr-quality.
// The IR is what presets and desired-state files compile to and what the
// reconcile package consumes. It must not import any adapter-specific types.
package v1

// DesiredState is the declarative target of a single convergence pass:
// one custom format and one quality profile derived from a template.
type DesiredState struct {
	// Source names where this state came from (preset name or file path)
	Source string `json:"source,omitempty"`

	// CustomFormat is created first; its ID feeds the profile's score table
	CustomFormat CustomFormatIR `json:"customFormat"`

	// QualityProfile is derived from an existing template profile
	QualityProfile QualityProfileIR `json:"qualityProfile"`
}
