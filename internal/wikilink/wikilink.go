// Package wikilink scans double-bracket wikilinks in note text.
//
// Grammar:
//
//	[[target]]
//	[[target|display text]]
//
// The inner text between the brackets cannot contain '[' or ']'. This package
// knows nothing about code fences or tags; callers decide what a link means.
package wikilink

import (
	"regexp"
	"strings"
)

// Match is a wikilink found in a single line.
type Match struct {
	// Inner is the raw text between the brackets, untrimmed.
	Inner   string
	Target  string
	Display *string
	Start   int
	End     int
	Literal string
}

var re = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// ParseExact parses a string that is exactly one wikilink literal, ignoring
// surrounding whitespace.
func ParseExact(s string) (Match, bool) {
	s = strings.TrimSpace(s)
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil || loc[0] != 0 || loc[1] != len(s) {
		return Match{}, false
	}
	m, ok := newMatch(s, loc)
	return m, ok
}

// FindAllInLine returns every wikilink in line, in order of appearance.
func FindAllInLine(line string) []Match {
	var out []Match
	for _, loc := range re.FindAllStringSubmatchIndex(line, -1) {
		if m, ok := newMatch(line, loc); ok {
			out = append(out, m)
		}
	}
	return out
}

func newMatch(s string, loc []int) (Match, bool) {
	inner := s[loc[2]:loc[3]]
	parts := strings.SplitN(inner, "|", 2)
	target := strings.TrimSpace(parts[0])
	if target == "" {
		return Match{}, false
	}

	m := Match{
		Inner:   inner,
		Target:  target,
		Start:   loc[0],
		End:     loc[1],
		Literal: s[loc[0]:loc[1]],
	}
	if len(parts) == 2 {
		d := strings.TrimSpace(parts[1])
		m.Display = &d
	}
	return m, true
}
