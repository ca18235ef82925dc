package parser

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is a markdown heading found in a note body.
type Heading struct {
	Level int
	Text  string
	Line  int // 1-indexed within the scanned content
}

// ExtractHeadings returns the headings of content in document order, using
// goldmark so headings inside code fences are ignored.
func ExtractHeadings(content string) []Heading {
	var headings []Heading

	source := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	lineStarts := computeLineStarts(content)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		var b strings.Builder
		for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*ast.Text); ok {
				b.Write(t.Segment.Value(source))
			}
		}
		headingText := strings.TrimSpace(b.String())
		if headingText == "" {
			return ast.WalkSkipChildren, nil
		}

		line := 1
		if heading.Lines().Len() > 0 {
			line = offsetToLine(lineStarts, heading.Lines().At(0).Start) + 1
		}

		headings = append(headings, Heading{Level: heading.Level, Text: headingText, Line: line})
		return ast.WalkSkipChildren, nil
	})

	return headings
}

// Outline renders up to max headings as an indented list, one per line.
func Outline(content string, max int) string {
	headings := ExtractHeadings(content)
	if max > 0 && len(headings) > max {
		headings = headings[:max]
	}

	var b strings.Builder
	for _, h := range headings {
		b.WriteString(strings.Repeat("  ", h.Level-1))
		b.WriteString("- ")
		b.WriteString(h.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func computeLineStarts(content string) []int {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// offsetToLine converts a byte offset to a 0-indexed line number.
func offsetToLine(lineStarts []int, offset int) int {
	for i := len(lineStarts) - 1; i >= 0; i-- {
		if lineStarts[i] <= offset {
			return i
		}
	}
	return 0
}
