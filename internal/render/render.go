// Package render serializes canonical records back into frontmatter blocks
// and reassembles note text.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/vaultfm/internal/dates"
	"github.com/aidanlsb/vaultfm/internal/parser"
	"github.com/aidanlsb/vaultfm/internal/record"
	"github.com/aidanlsb/vaultfm/internal/schema"
)

// Options controls the layout of a rendered block.
type Options struct {
	// Comments emits every schema field grouped under category header
	// comments. Without it only the fields present in the record are
	// emitted, in schema order, with no comments or blank lines.
	Comments bool
}

// Frontmatter renders rec as a delimited block ending in a newline. The
// output is a pure function of the record and options.
func Frontmatter(rec *record.Record, opts Options) string {
	var b strings.Builder
	b.WriteString(parser.Delimiter + "\n")

	if opts.Comments {
		for i, cat := range schema.Categories() {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("# " + cat.Label + "\n")
			for _, f := range cat.Fields {
				v, _ := rec.Get(f.Name)
				writeField(&b, f.Name, v)
			}
		}
	} else {
		for _, name := range rec.Keys() {
			v, _ := rec.Get(name)
			writeField(&b, name, v)
		}
	}

	b.WriteString(parser.Delimiter + "\n")
	return b.String()
}

func writeField(b *strings.Builder, name string, v any) {
	// An empty notes field is a bare key so it reads as deliberately blank.
	if name == schema.FieldNotes && record.IsEmpty(v) {
		b.WriteString(name + ":\n")
		return
	}
	b.WriteString(name + ": " + Value(v) + "\n")
}

// Value formats a single value in the frontmatter dialect:
// nil is empty, lists and maps use flow style, strings containing a colon,
// a hash or a newline are double-quoted, as is any string yaml.v3 would not
// read back unchanged.
func Value(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(t)
	case string:
		return formatString(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		return formatTime(t)
	case []any:
		if len(t) == 0 {
			return "[]"
		}
	case []string:
		if len(t) == 0 {
			return "[]"
		}
	case map[string]any:
		if len(t) == 0 {
			return "{}"
		}
	}
	return flow(v)
}

func formatString(s string) string {
	if s == "" || !strings.ContainsAny(s, ":#\n") && decodesAsItself(s) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}

// decodesAsItself reports whether the bare scalar s reads back as the same
// string, so "[WIP] x", "true" or "42" get quoted.
func decodesAsItself(s string) bool {
	var v any
	if err := yaml.Unmarshal([]byte("v: "+s), &v); err != nil {
		return false
	}
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return false
	}
	got, ok := m["v"].(string)
	return ok && got == s
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return dates.FormatDate(t)
	}
	return t.Format(time.RFC3339)
}

// flow encodes composite values as single-line YAML flow collections.
func flow(v any) string {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	setFlowStyle(&node)

	out, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(string(out))
}

func setFlowStyle(n *yaml.Node) {
	if n.Kind == yaml.SequenceNode || n.Kind == yaml.MappingNode {
		n.Style |= yaml.FlowStyle
	}
	for _, c := range n.Content {
		setFlowStyle(c)
	}
}

// Document joins a rendered block and a body, dropping blank lines at the
// start of the body.
func Document(block, body string) string {
	return block + trimLeadingBlankLines(body)
}

func trimLeadingBlankLines(body string) string {
	for {
		idx := strings.IndexByte(body, '\n')
		if idx < 0 {
			if strings.TrimSpace(body) == "" {
				return ""
			}
			return body
		}
		if strings.TrimSpace(body[:idx]) != "" {
			return body
		}
		body = body[idx+1:]
	}
}
