package shared

import (
	"encoding/json"

	"k8s.io/utils/ptr"
)

// CustomFormatResource represents a custom format as served by
// /api/v3/customformat. ID is nil on create requests.
type CustomFormatResource struct {
	ID                              *int                        `json:"id,omitempty"`
	Name                            string                      `json:"name"`
	IncludeCustomFormatWhenRenaming bool                        `json:"includeCustomFormatWhenRenaming"`
	Specifications                  []CustomFormatSpecification `json:"specifications"`
}

// CustomFormatSpecification represents a custom format specification
// used within custom format definitions.
type CustomFormatSpecification struct {
	Name           string  `json:"name"`
	Implementation string  `json:"implementation"`
	Negate         bool    `json:"negate"`
	Required       bool    `json:"required"`
	Fields         []Field `json:"fields"`
}

var qualityProfileKeys = []string{
	"id", "name", "upgradeAllowed", "cutoff", "items", "formatItems",
	"minFormatScore", "cutoffFormatScore", "minUpgradeFormatScore",
}

// QualityProfileResource represents a quality profile as served by
// /api/v3/qualityprofile. Members without a typed field (language on
// Radarr, for one) are kept in Extra.
type QualityProfileResource struct {
	ID                    *int                 `json:"id,omitempty"`
	Name                  string               `json:"name"`
	UpgradeAllowed        bool                 `json:"upgradeAllowed"`
	Cutoff                int                  `json:"cutoff"`
	Items                 []QualityProfileItem `json:"items"`
	FormatItems           []ProfileFormatItem  `json:"formatItems"`
	MinFormatScore        int                  `json:"minFormatScore"`
	CutoffFormatScore     int                  `json:"cutoffFormatScore"`
	MinUpgradeFormatScore int                  `json:"minUpgradeFormatScore"`

	Extra Extra `json:"-"`
}

// UnmarshalJSON decodes the typed members and keeps the rest in Extra.
func (p *QualityProfileResource) UnmarshalJSON(data []byte) error {
	type alias QualityProfileResource
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := splitExtra(data, qualityProfileKeys...)
	if err != nil {
		return err
	}
	*p = QualityProfileResource(a)
	p.Extra = extra
	return nil
}

// MarshalJSON encodes the typed members followed by Extra.
func (p QualityProfileResource) MarshalJSON() ([]byte, error) {
	type alias QualityProfileResource
	a := alias(p)
	if a.Items == nil {
		a.Items = []QualityProfileItem{}
	}
	if a.FormatItems == nil {
		a.FormatItems = []ProfileFormatItem{}
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, p.Extra)
}

// DeepCopy returns an independent copy of the profile.
func (p *QualityProfileResource) DeepCopy() *QualityProfileResource {
	if p == nil {
		return nil
	}
	out := new(QualityProfileResource)
	p.DeepCopyInto(out)
	return out
}

// DeepCopyInto copies the receiver into out. out must be non-nil.
func (p *QualityProfileResource) DeepCopyInto(out *QualityProfileResource) {
	*out = *p
	if p.ID != nil {
		out.ID = ptr.To(*p.ID)
	}
	out.Items = copyItems(p.Items)
	if p.FormatItems != nil {
		out.FormatItems = make([]ProfileFormatItem, len(p.FormatItems))
		copy(out.FormatItems, p.FormatItems)
	}
	out.Extra = p.Extra.DeepCopy()
}

var qualityProfileItemKeys = []string{"id", "name", "quality", "items", "allowed"}

// QualityProfileItem is either a single quality (Quality set, no Name) or a
// named group of qualities (Name and ID set, sub-items in Items).
type QualityProfileItem struct {
	ID      *int                 `json:"id,omitempty"`
	Name    *string              `json:"name,omitempty"`
	Quality *Quality             `json:"quality,omitempty"`
	Items   []QualityProfileItem `json:"items"`
	Allowed bool                 `json:"allowed"`

	Extra Extra `json:"-"`
}

// IsGroup reports whether the item groups other qualities.
func (i *QualityProfileItem) IsGroup() bool {
	return len(i.Items) > 0
}

// DisplayName returns the group name, or the quality name for a leaf.
func (i *QualityProfileItem) DisplayName() string {
	if i.Name != nil {
		return *i.Name
	}
	if i.Quality != nil {
		return i.Quality.Name
	}
	return ""
}

// UnmarshalJSON decodes the typed members and keeps the rest in Extra.
func (i *QualityProfileItem) UnmarshalJSON(data []byte) error {
	type alias QualityProfileItem
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := splitExtra(data, qualityProfileItemKeys...)
	if err != nil {
		return err
	}
	*i = QualityProfileItem(a)
	i.Extra = extra
	return nil
}

// MarshalJSON encodes the typed members followed by Extra. items is written
// only when it was present on decode (or set), so an empty list stays empty
// and a missing key stays missing.
func (i QualityProfileItem) MarshalJSON() ([]byte, error) {
	type alias QualityProfileItem
	aux := struct {
		alias
		Items *[]QualityProfileItem `json:"items,omitempty"`
	}{alias: alias(i)}
	if i.Items != nil {
		aux.Items = &i.Items
	}
	data, err := json.Marshal(aux)
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, i.Extra)
}

// DeepCopyInto copies the receiver into out. out must be non-nil.
func (i *QualityProfileItem) DeepCopyInto(out *QualityProfileItem) {
	*out = *i
	if i.ID != nil {
		out.ID = ptr.To(*i.ID)
	}
	if i.Name != nil {
		out.Name = ptr.To(*i.Name)
	}
	if i.Quality != nil {
		out.Quality = i.Quality.DeepCopy()
	}
	out.Items = copyItems(i.Items)
	out.Extra = i.Extra.DeepCopy()
}

func copyItems(items []QualityProfileItem) []QualityProfileItem {
	if items == nil {
		return nil
	}
	out := make([]QualityProfileItem, len(items))
	for n := range items {
		items[n].DeepCopyInto(&out[n])
	}
	return out
}

var qualityKeys = []string{"id", "name", "source", "resolution"}

// Quality represents a quality definition. Source and Resolution are
// optional because Sonarr and Radarr disagree on their presence.
type Quality struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Source     *string `json:"source,omitempty"`
	Resolution *int    `json:"resolution,omitempty"`

	Extra Extra `json:"-"`
}

// UnmarshalJSON decodes the typed members and keeps the rest in Extra.
func (q *Quality) UnmarshalJSON(data []byte) error {
	type alias Quality
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := splitExtra(data, qualityKeys...)
	if err != nil {
		return err
	}
	*q = Quality(a)
	q.Extra = extra
	return nil
}

// MarshalJSON encodes the typed members followed by Extra.
func (q Quality) MarshalJSON() ([]byte, error) {
	type alias Quality
	data, err := json.Marshal(alias(q))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, q.Extra)
}

// DeepCopy returns an independent copy of the quality.
func (q *Quality) DeepCopy() *Quality {
	if q == nil {
		return nil
	}
	out := *q
	if q.Source != nil {
		out.Source = ptr.To(*q.Source)
	}
	if q.Resolution != nil {
		out.Resolution = ptr.To(*q.Resolution)
	}
	out.Extra = q.Extra.DeepCopy()
	return &out
}

// ProfileFormatItem assigns a score to a custom format within a profile.
type ProfileFormatItem struct {
	Format int    `json:"format"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}
