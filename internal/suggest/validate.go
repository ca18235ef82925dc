package suggest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/aidanlsb/vaultfm/internal/record"
	"github.com/aidanlsb/vaultfm/internal/schema"
)

// Issue is one rejected suggestion.
type Issue struct {
	Field   string
	Message string
}

var (
	compiledOnce sync.Once
	compiled     *jsonschema.Schema
	compileErr   error
)

// suggestionSchema describes the shape suggestions must have: schema list
// fields are arrays of strings, bool fields are booleans, everything else a
// string. Unknown keys are allowed here and ignored at merge time.
func suggestionSchema() map[string]any {
	props := map[string]any{}
	for _, f := range schema.Fields() {
		switch {
		case f.Kind == schema.KindList:
			props[f.Name] = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
		case f.Kind == schema.KindBool:
			props[f.Name] = map[string]any{"type": "boolean"}
		default:
			props[f.Name] = map[string]any{"type": "string"}
		}
	}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"properties":           props,
		"additionalProperties": true,
	}
}

func compiledSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		encoded, err := json.Marshal(suggestionSchema())
		if err != nil {
			compileErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("suggestions.json", bytes.NewReader(encoded)); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = compiler.Compile("suggestions.json")
	})
	return compiled, compileErr
}

// Validate checks decoded model output against the suggestion schema. Fields
// with the wrong shape are dropped and reported; the rest are returned with
// lists as []string. Keys outside the schema are dropped silently.
func Validate(raw map[string]any) (record.Suggestions, []Issue, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, nil, fmt.Errorf("compile suggestion schema: %w", err)
	}

	bad := map[string]string{}
	if err := sch.Validate(raw); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return nil, nil, fmt.Errorf("validate suggestions: %w", err)
		}
		collectBad(verr, bad)
	}

	out := record.Suggestions{}
	for key, value := range raw {
		if _, rejected := bad[key]; rejected {
			continue
		}
		f, ok := schema.Lookup(key)
		if !ok {
			continue
		}
		out[f.Name] = toSuggestion(value)
	}

	issues := make([]Issue, 0, len(bad))
	for field, msg := range bad {
		issues = append(issues, Issue{Field: field, Message: msg})
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	return out, issues, nil
}

// collectBad maps each failing leaf to its top-level property.
func collectBad(node *jsonschema.ValidationError, bad map[string]string) {
	if node == nil {
		return
	}
	if len(node.Causes) == 0 {
		field := topLevel(node.InstanceLocation)
		if field == "" {
			return
		}
		if _, seen := bad[field]; !seen {
			bad[field] = strings.TrimSpace(node.Message)
		}
		return
	}
	for _, cause := range node.Causes {
		collectBad(cause, bad)
	}
}

// topLevel returns the first segment of a JSON pointer like /tags/0.
func topLevel(pointer string) string {
	pointer = strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	pointer = strings.TrimPrefix(pointer, "/")
	if i := strings.IndexByte(pointer, '/'); i >= 0 {
		pointer = pointer[:i]
	}
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(pointer)
}

func toSuggestion(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
