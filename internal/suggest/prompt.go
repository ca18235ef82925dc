package suggest

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/vaultfm/internal/parser"
	"github.com/aidanlsb/vaultfm/internal/render"
)

// DefaultContentLimit is how many characters of a note body go into a prompt.
const DefaultContentLimit = 2000

// maxOutlineHeadings caps the outline included in a prompt.
const maxOutlineHeadings = 30

// Note is what the analyzer sees of a note.
type Note struct {
	Title    string
	Body     string
	Existing map[string]any
}

// BuildPrompt assembles the analysis prompt for one note. The body is cut to
// limit characters; limit <= 0 means DefaultContentLimit.
func BuildPrompt(note Note, limit int) string {
	if limit <= 0 {
		limit = DefaultContentLimit
	}

	var b strings.Builder
	b.WriteString("Analyze this Obsidian note and suggest metadata values.\n\n")
	fmt.Fprintf(&b, "Note Title: %s\n\n", note.Title)

	if outline := parser.Outline(note.Body, maxOutlineHeadings); outline != "" {
		b.WriteString("Note Outline:\n")
		b.WriteString(outline)
		b.WriteString("\n")
	}

	b.WriteString("Note Content:\n")
	b.WriteString(truncate(note.Body, limit))
	b.WriteString("\n\n")

	b.WriteString("Existing Metadata:\n")
	fmt.Fprintf(&b, "Project: %s\n", existingProject(note.Existing))
	fmt.Fprintf(&b, "Tags: %s\n\n", existingTags(note.Existing))

	b.WriteString(instructions)
	return b.String()
}

const instructions = `Instructions:
Based on the content, suggest appropriate values for these metadata fields.
Respond ONLY with a valid JSON object (no markdown, no explanation):

{
  "category": "one of: Technical, Personal, Project, Reference, Learning, Health, Financial, Maritime, History, AI_ML",
  "note_type": "one of: note, documentation, idea, task, research, log, guide, reference",
  "topics": ["list", "of", "relevant", "topics"],
  "tags": ["list", "of", "tags"],
  "technology_stack": ["if technical, list technologies"],
  "tools_used": ["software or tools mentioned"],
  "ai_model": "if AI-related, which model",
  "project": "project name if mentioned or keep existing",
  "status": "one of: new, in-progress, completed, archived, needs-review"
}

Only include fields where you have confidence. Return empty arrays [] for lists if nothing appropriate found.
`

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func existingProject(existing map[string]any) string {
	v, ok := lookupFold(existing, "project")
	if !ok || v == nil {
		return "None"
	}
	if s := render.Value(v); s != "" {
		return s
	}
	return "None"
}

func existingTags(existing map[string]any) string {
	v, ok := lookupFold(existing, "tags")
	if !ok || v == nil {
		return "[]"
	}
	return render.Value(v)
}

func lookupFold(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}
