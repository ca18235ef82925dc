// Package record holds the canonical in-memory frontmatter of one note and
// the merge rules that build it.
package record

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/aidanlsb/vaultfm/internal/schema"
)

// Record maps schema field names to values. Keys are always canonical
// lower-case schema names; values are stored verbatim.
type Record struct {
	values map[string]any
}

// New returns a record populated with every schema field at its default.
func New() *Record {
	return &Record{values: schema.Template()}
}

// Empty returns a record with no fields set.
func Empty() *Record {
	return &Record{values: make(map[string]any)}
}

// FromExisting builds a record holding only the schema keys of existing.
func FromExisting(existing map[string]any) *Record {
	r := Empty()
	r.Adopt(existing)
	return r
}

// Adopt copies every key of existing whose case-insensitive form is a schema
// field, verbatim. Unknown keys are dropped. When several keys fold to the
// same field, the one sorting last wins, so an exact lower-case key beats a
// capitalized variant.
func (r *Record) Adopt(existing map[string]any) {
	keys := make([]string, 0, len(existing))
	for k := range existing {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if f, ok := schema.Lookup(k); ok {
			r.values[f.Name] = existing[k]
		}
	}
}

// Get returns the value stored for name.
func (r *Record) Get(name string) (any, bool) {
	f, ok := schema.Lookup(name)
	if !ok {
		return nil, false
	}
	v, ok := r.values[f.Name]
	return v, ok
}

// Set stores a value for a schema field. It reports false when name is not
// part of the schema.
func (r *Record) Set(name string, value any) bool {
	f, ok := schema.Lookup(name)
	if !ok {
		return false
	}
	r.values[f.Name] = value
	return true
}

// Has reports whether the field is present, even with a nil value.
func (r *Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Keys returns the present fields in schema order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for _, name := range schema.Names() {
		if _, ok := r.values[name]; ok {
			keys = append(keys, name)
		}
	}
	return keys
}

// Len returns the number of present fields.
func (r *Record) Len() int { return len(r.values) }

// Clone returns a copy of the record. Lists and maps are copied one level deep.
func (r *Record) Clone() *Record {
	out := &Record{values: make(map[string]any, len(r.values))}
	for k, v := range r.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

// Map returns a copy of the record as a plain map.
func (r *Record) Map() map[string]any {
	return r.Clone().values
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		return append([]any{}, t...)
	case []string:
		return append([]string{}, t...)
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = vv
		}
		return m
	default:
		return v
	}
}

// IsEmpty reports whether a value counts as unset: nil, false, the empty
// string, or an empty list or map.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

// asList returns the elements of a list value and whether v was a list.
func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return append([]any{}, t...), true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// union appends the items of add that are not already in base. Items are
// compared by their printed form.
func union(base []any, add []any) []any {
	seen := make(map[string]bool, len(base)+len(add))
	out := make([]any, 0, len(base)+len(add))
	for _, items := range [][]any{base, add} {
		for _, item := range items {
			key := fmt.Sprint(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
	}
	return out
}
