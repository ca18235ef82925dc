package record

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/aidanlsb/vaultfm/internal/dates"
	"github.com/aidanlsb/vaultfm/internal/parser"
	"github.com/aidanlsb/vaultfm/internal/schema"
)

// StampPolicy controls how migration_date is written by the base pass.
type StampPolicy string

const (
	// StampAlways overwrites migration_date on every run.
	StampAlways StampPolicy = "always"
	// StampFirst only stamps notes whose migration_date is still empty.
	StampFirst StampPolicy = "first"
)

// ParseStampPolicy parses a policy name. The empty string means StampAlways.
func ParseStampPolicy(s string) (StampPolicy, error) {
	switch StampPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StampAlways:
		return StampAlways, nil
	case StampFirst:
		return StampFirst, nil
	}
	return "", fmt.Errorf("unknown migration date policy %q (want always or first)", s)
}

// MergeInput carries the sources of the base pass.
type MergeInput struct {
	// Existing is the decoded frontmatter, nil when absent or undecodable.
	Existing map[string]any
	Inline   parser.Inline
	// Now is the time used for migration_date.
	Now time.Time
	// Created and Modified are the note's on-disk timestamps. Zero values
	// leave the fields alone.
	Created  time.Time
	Modified time.Time
	Stamp    StampPolicy
}

// Merge builds the canonical record for the base pass. Later steps override
// earlier ones for the fields they touch:
//
//  1. schema defaults
//  2. existing keys matching a schema field, verbatim
//  3. inline project
//  4. tags unioned with discovered short tags
//  5. notes describing what was absorbed
//  6. migration_date stamped
//  7. created/modified back-filled when still empty
func Merge(in MergeInput) *Record {
	r := New()
	r.Adopt(in.Existing)

	stampDue := in.Stamp != StampFirst || IsEmpty(r.values[schema.FieldMigrationDate])
	needCreated := IsEmpty(r.values[schema.FieldCreated])
	needModified := IsEmpty(r.values[schema.FieldModified])

	if project, ok := in.Inline.Fields[schema.FieldProject]; ok {
		r.values[schema.FieldProject] = project
	}

	if len(in.Inline.Tags) > 0 {
		r.values[schema.FieldTags] = union(coerceTags(r.values[schema.FieldTags]), stringsToAny(in.Inline.Tags))
	}

	if note := conversionNote(in.Inline); note != "" {
		r.values[schema.FieldNotes] = note
	}

	if stampDue {
		r.values[schema.FieldMigrationDate] = dates.FormatDate(in.Now)
	}

	if needCreated && !in.Created.IsZero() {
		r.values[schema.FieldCreated] = dates.FormatDate(in.Created)
	}
	if needModified && !in.Modified.IsZero() {
		r.values[schema.FieldModified] = dates.FormatDate(in.Modified)
	}

	return r
}

// coerceTags turns the current tags value into a list: a bare string becomes
// a one-element list, other non-list values become empty.
func coerceTags(v any) []any {
	if list, ok := asList(v); ok {
		return list
	}
	if s, ok := v.(string); ok && s != "" {
		return []any{s}
	}
	return nil
}

func conversionNote(in parser.Inline) string {
	var parts []string
	if len(in.Fields) > 0 {
		keys := make([]string, 0, len(in.Fields))
		for k := range in.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts = append(parts, "Converted from Dataview fields: "+strings.Join(keys, ", "))
	}
	if len(in.Tags) > 0 {
		parts = append(parts, "Extracted wikilink tags: "+strings.Join(in.Tags, ", "))
	}
	return strings.Join(parts, " | ")
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Suggestions maps schema field names to suggested values, each a string or
// a list of strings.
type Suggestions map[string]any

// Change is one field altered by ApplySuggestions.
type Change struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// ApplySuggestions overlays suggestions onto r without overwriting confident
// values:
//
//   - list fields are unioned with a non-empty suggested list, a bare string
//     current value counting as a one-element list
//   - other fields adopt a non-empty suggestion only while unset or still at
//     the default status
//
// Keys that are not schema fields are ignored. The returned changes are in
// schema order; an empty result means nothing changed.
func ApplySuggestions(r *Record, s Suggestions) []Change {
	byField := make(map[string]any, len(s))
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if f, ok := schema.Lookup(k); ok {
			byField[f.Name] = s[k]
		}
	}

	var changes []Change
	for _, name := range schema.Names() {
		suggested, ok := byField[name]
		if !ok {
			continue
		}

		old, hadOld := r.values[name]
		next, apply := overlay(name, old, suggested)
		if !apply {
			continue
		}
		if hadOld && reflect.DeepEqual(old, next) {
			continue
		}

		r.values[name] = next
		changes = append(changes, Change{Field: name, Old: old, New: next})
	}
	return changes
}

func overlay(name string, current, suggested any) (any, bool) {
	if schema.IsListField(name) {
		list, ok := asList(suggested)
		if !ok || len(list) == 0 {
			return nil, false
		}
		return union(coerceTags(current), list), true
	}

	if !isUnset(current) || IsEmpty(suggested) {
		return nil, false
	}
	return suggested, true
}

// isUnset extends IsEmpty with the default status sentinel.
func isUnset(v any) bool {
	if s, ok := v.(string); ok && s == schema.DefaultStatus {
		return true
	}
	return IsEmpty(v)
}
