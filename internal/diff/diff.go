// Package diff renders line diffs of note rewrites for dry-run previews.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Line kinds.
const (
	LineContext = "context"
	LineAdded   = "added"
	LineRemoved = "removed"
)

// DefaultContext is the number of unchanged lines shown around a change.
const DefaultContext = 2

// Line is one line of a diff.
type Line struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	OldLine int    `json:"old_line,omitempty"`
	NewLine int    `json:"new_line,omitempty"`
}

// Lines returns the full line diff of before and after.
func Lines(before, after string) []Line {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	oldLine, newLine := 1, 1
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Type: LineContext, Text: text, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Type: LineRemoved, Text: text, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Type: LineAdded, Text: text, NewLine: newLine})
				newLine++
			}
		}
	}
	return lines
}

// Unified renders a unified diff with context lines around each change.
// Identical inputs render as the empty string.
func Unified(before, after string, context int) string {
	if before == after {
		return ""
	}
	if context < 0 {
		context = DefaultContext
	}

	lines := Lines(before, after)
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Type == LineContext {
			continue
		}
		for j := i - context; j <= i+context; j++ {
			if j >= 0 && j < len(lines) {
				keep[j] = true
			}
		}
	}

	var b strings.Builder
	for i := 0; i < len(lines); {
		if !keep[i] {
			i++
			continue
		}
		end := i
		for end < len(lines) && keep[end] {
			end++
		}
		writeHunk(&b, lines[i:end])
		i = end
	}
	return b.String()
}

func writeHunk(b *strings.Builder, hunk []Line) {
	oldStart, newStart := 0, 0
	oldCount, newCount := 0, 0
	for _, l := range hunk {
		if l.OldLine > 0 {
			if oldStart == 0 {
				oldStart = l.OldLine
			}
			oldCount++
		}
		if l.NewLine > 0 {
			if newStart == 0 {
				newStart = l.NewLine
			}
			newCount++
		}
	}
	fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	for _, l := range hunk {
		switch l.Type {
		case LineAdded:
			b.WriteString("+")
		case LineRemoved:
			b.WriteString("-")
		default:
			b.WriteString(" ")
		}
		b.WriteString(l.Text)
		b.WriteString("\n")
	}
}
