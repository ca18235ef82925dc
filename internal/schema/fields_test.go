package schema

import "testing"

func TestSchemaHasThirtyOneFields(t *testing.T) {
	fields := Fields()
	if len(fields) != 31 {
		t.Fatalf("len(Fields()) = %d, want 31", len(fields))
	}

	seen := map[string]bool{}
	for _, f := range fields {
		if seen[f.Name] {
			t.Fatalf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if f.Category == "" {
			t.Errorf("field %q has no category", f.Name)
		}
	}

	if fields[0].Name != FieldCreated {
		t.Errorf("first field = %q, want created", fields[0].Name)
	}
	if fields[len(fields)-1].Name != FieldNotes {
		t.Errorf("last field = %q, want notes", fields[len(fields)-1].Name)
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Project", FieldProject, true},
		{"TAGS", FieldTags, true},
		{" needs_attention ", "needs_attention", true},
		{"title", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, ok := Lookup(tt.in)
			if ok != tt.ok {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && f.Name != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.in, f.Name, tt.want)
			}
		})
	}
}

func TestDefaultValues(t *testing.T) {
	status, _ := Lookup(FieldStatus)
	if got := status.DefaultValue(); got != DefaultStatus {
		t.Errorf("status default = %v, want %q", got, DefaultStatus)
	}

	reviewed, _ := Lookup("reviewed")
	if got := reviewed.DefaultValue(); got != false {
		t.Errorf("reviewed default = %v, want false", got)
	}

	tags, _ := Lookup(FieldTags)
	if got, ok := tags.DefaultValue().([]any); !ok || len(got) != 0 {
		t.Errorf("tags default = %#v, want empty list", tags.DefaultValue())
	}

	project, _ := Lookup(FieldProject)
	if got := project.DefaultValue(); got != nil {
		t.Errorf("project default = %v, want nil", got)
	}
}

func TestIsListField(t *testing.T) {
	for _, name := range []string{"tags", "topics", "technology_stack", "tools_used"} {
		if !IsListField(name) {
			t.Errorf("IsListField(%q) = false, want true", name)
		}
	}
	if IsListField("collaborators") {
		t.Error("collaborators is a list in the schema but not merged as a set by enrichment")
	}
}

func TestCategoriesReturnsCopy(t *testing.T) {
	cats := Categories()
	cats[0].Fields[0].Name = "mutated"
	if Fields()[0].Name != FieldCreated {
		t.Fatal("Categories() exposed internal state")
	}
}
