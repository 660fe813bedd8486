// Package draft holds an applicant profile between document upload and
// submission, tracking where each field value came from.
package draft

import (
	"sort"
	"time"
)

// Provenance records who last set a field.
type Provenance string

const (
	ProvenanceUnset Provenance = "unset"
	ProvenanceAuto  Provenance = "auto-filled"
	ProvenanceUser  Provenance = "user-edited"
)

// Source names the producer of a batch of field values.
type Source string

const (
	SourceDocument Source = "document"
	SourceWebhook  Source = "webhook"
	SourceUser     Source = "user"
)

func (s Source) Valid() bool {
	switch s {
	case SourceDocument, SourceWebhook, SourceUser:
		return true
	}
	return false
}

// documentSkipped fields are never taken from an uploaded document; the
// extractor is unreliable for them.
var documentSkipped = map[string]bool{
	"businessName": true,
	"address":      true,
}

type Draft struct {
	ID         string                `json:"id"`
	Values     map[string]string     `json:"values"`
	Provenance map[string]Provenance `json:"provenance"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

func New(id string) *Draft {
	return &Draft{
		ID:         id,
		Values:     map[string]string{},
		Provenance: map[string]Provenance{},
	}
}

// ProvenanceOf returns the tag for field, ProvenanceUnset when never set.
func (d *Draft) ProvenanceOf(field string) Provenance {
	if p, ok := d.Provenance[field]; ok {
		return p
	}
	return ProvenanceUnset
}

// Apply merges fields from source into d and returns the names of the
// fields whose value or provenance changed, sorted.
//
// Automatic sources fill unset and auto-filled fields and never touch a
// user-edited one. Empty automatic values are ignored. A user value is
// always taken and pins the field.
func Apply(d *Draft, source Source, fields map[string]string) []string {
	if d.Values == nil {
		d.Values = map[string]string{}
	}
	if d.Provenance == nil {
		d.Provenance = map[string]Provenance{}
	}

	var changed []string
	for _, name := range sortedKeys(fields) {
		value := fields[name]

		if source == SourceUser {
			if d.Values[name] != value || d.ProvenanceOf(name) != ProvenanceUser {
				d.Values[name] = value
				d.Provenance[name] = ProvenanceUser
				changed = append(changed, name)
			}
			continue
		}

		if value == "" || d.ProvenanceOf(name) == ProvenanceUser {
			continue
		}
		if source == SourceDocument && documentSkipped[name] {
			continue
		}
		if d.Values[name] == value && d.ProvenanceOf(name) == ProvenanceAuto {
			continue
		}
		d.Values[name] = value
		d.Provenance[name] = ProvenanceAuto
		changed = append(changed, name)
	}
	return changed
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
