// Package schema defines the fixed frontmatter schema every note is migrated to.
//
// The schema is 31 fields in a fixed order, grouped under category headers.
// No other keys are ever persisted by the migrate pass.
package schema

import "strings"

// Kind is the declared value type of a schema field.
type Kind int

const (
	// KindString is a string that may be absent (nil).
	KindString Kind = iota
	// KindBool is a boolean defaulting to false.
	KindBool
	// KindList is an ordered list of strings defaulting to empty.
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "string"
	}
}

// DefaultStatus is the template value of the status field.
const DefaultStatus = "new"

// Field names referenced by the merge rules.
const (
	FieldCreated       = "created"
	FieldModified      = "modified"
	FieldStatus        = "status"
	FieldMigrationDate = "migration_date"
	FieldProject       = "project"
	FieldTopics        = "topics"
	FieldTags          = "tags"
	FieldTechStack     = "technology_stack"
	FieldToolsUsed     = "tools_used"
	FieldNotes         = "notes"
)

// Field describes a single schema field.
type Field struct {
	Name     string
	Kind     Kind
	Category string
	// Default is the template value for string fields; nil means absent.
	Default *string
}

// Category is a labelled group of fields. The label is emitted as a header
// comment by the serializer.
type Category struct {
	Label  string
	Fields []Field
}

var categories = buildCategories()

var byName = func() map[string]Field {
	m := make(map[string]Field)
	for _, c := range categories {
		for _, f := range c.Fields {
			m[f.Name] = f
		}
	}
	return m
}()

func buildCategories() []Category {
	status := DefaultStatus
	def := []struct {
		label  string
		fields []Field
	}{
		{"Core Metadata", []Field{
			str(FieldCreated), str(FieldModified),
			{Name: FieldStatus, Kind: KindString, Default: &status},
			str(FieldMigrationDate), boolean("reviewed"), boolean("needs_attention"),
		}},
		{"Classification", []Field{str(FieldProject), str("category"), list(FieldTopics), list(FieldTags)}},
		{"Note Characteristics", []Field{str("note_type"), str("source")}},
		{"People", []Field{str("person"), list("collaborators")}},
		{"Technology", []Field{list(FieldTechStack), list(FieldToolsUsed), str("ai_model")}},
		{"Location", []Field{str("location"), str("region")}},
		{"Historical", []Field{str("historical_period"), str("historical_context")}},
		{"Health", []Field{str("health_category"), boolean("adhd_relevant")}},
		{"External", []Field{str("url"), str("external_id")}},
		{"Task Management", []Field{str("priority"), boolean("actionable"), str("due_date")}},
		{"Financial", []Field{str("financial_category")}},
		{"Flexible", []Field{str("metadata"), str(FieldNotes)}},
	}

	out := make([]Category, 0, len(def))
	for _, d := range def {
		fields := make([]Field, len(d.fields))
		for i, f := range d.fields {
			f.Category = d.label
			fields[i] = f
		}
		out = append(out, Category{Label: d.label, Fields: fields})
	}
	return out
}

func str(name string) Field     { return Field{Name: name, Kind: KindString} }
func boolean(name string) Field { return Field{Name: name, Kind: KindBool} }
func list(name string) Field    { return Field{Name: name, Kind: KindList} }

// Categories returns the schema categories in serialization order.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		fields := make([]Field, len(c.Fields))
		copy(fields, c.Fields)
		out[i] = Category{Label: c.Label, Fields: fields}
	}
	return out
}

// Fields returns every schema field in schema order.
func Fields() []Field {
	var out []Field
	for _, c := range categories {
		out = append(out, c.Fields...)
	}
	return out
}

// Names returns every schema field name in schema order.
func Names() []string {
	fields := Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Lookup finds a field by name, ignoring letter case.
func Lookup(name string) (Field, bool) {
	f, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// IsListField reports whether the enrichment pass merges the field as a set.
func IsListField(name string) bool {
	switch name {
	case FieldTags, FieldTopics, FieldTechStack, FieldToolsUsed:
		return true
	}
	return false
}

// DefaultValue returns the template value for a field: nil for strings
// without a default, false for bools, an empty list for lists.
func (f Field) DefaultValue() any {
	switch f.Kind {
	case KindBool:
		return false
	case KindList:
		return []any{}
	default:
		if f.Default != nil {
			return *f.Default
		}
		return nil
	}
}

// Template returns a fresh mapping of every field to its default value.
func Template() map[string]any {
	out := make(map[string]any, len(byName))
	for name, f := range byName {
		out[name] = f.DefaultValue()
	}
	return out
}
