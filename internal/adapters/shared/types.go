// Package shared provides the *arr v3 resource records exchanged with the
// custom format and quality profile collections. The records are typed, but
// every member the types do not model is kept in Extra and written back on
// marshal, so a record fetched from one endpoint can be resubmitted without
// losing fields this tool never touches.
package shared

import (
	"encoding/json"
)

// Extra holds JSON members that have no typed field, keyed by member name.
type Extra map[string]json.RawMessage

// DeepCopy returns an independent copy of the extra members.
func (e Extra) DeepCopy() Extra {
	if e == nil {
		return nil
	}
	out := make(Extra, len(e))
	for k, v := range e {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// splitExtra decodes data as an object and returns the members not listed in known.
func splitExtra(data []byte, known ...string) (Extra, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// mergeExtra adds extra members to an encoded object. Typed members win.
func mergeExtra(typed []byte, extra Extra) ([]byte, error) {
	if len(extra) == 0 {
		return typed, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(typed, &all); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := all[k]; !ok {
			all[k] = v
		}
	}
	return json.Marshal(all)
}

// Field represents a dynamic configuration field used in custom format
// specifications.
type Field struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}
