package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aidanlsb/vaultfm/internal/wikilink"
)

// ScanWindow is the number of leading body lines scanned for inline annotations.
const ScanWindow = 20

// MaxTagLength bounds the length of a bracketed token treated as a tag.
// Tokens at or above it are ordinary links.
const MaxTagLength = 30

// inlineFieldRe matches a Dataview-style `Key:: Value` line (already trimmed).
var inlineFieldRe = regexp.MustCompile(`^([\p{L}\p{N}_]+)::\s*(.+)$`)

// Inline holds metadata found in the scan window of a body.
type Inline struct {
	// Fields maps lower-cased keys to the last value seen for them.
	Fields map[string]string
	// Keys lists field keys in order of first appearance.
	Keys []string
	// Tags lists short bracketed tags in order of first appearance, deduplicated.
	Tags []string
}

// Empty reports whether nothing was found.
func (in Inline) Empty() bool {
	return len(in.Fields) == 0 && len(in.Tags) == 0
}

// ParseInlineField parses a line as a `key:: value` annotation.
func ParseInlineField(line string) (key, value string, ok bool) {
	m := inlineFieldRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(m[1]), strings.TrimSpace(m[2]), true
}

// IsTagText reports whether the inner text of a bracketed token qualifies as
// a tag: shorter than MaxTagLength and free of spaces.
func IsTagText(inner string) bool {
	return utf8.RuneCountInString(inner) < MaxTagLength && !strings.Contains(inner, " ")
}

// ScanInline extracts inline fields and short tags from the first ScanWindow
// lines of body.
func ScanInline(body string) Inline {
	in := Inline{Fields: map[string]string{}}
	seenTags := map[string]bool{}

	for _, line := range scanLines(body) {
		if key, value, ok := ParseInlineField(line); ok {
			if _, exists := in.Fields[key]; !exists {
				in.Keys = append(in.Keys, key)
			}
			in.Fields[key] = value
		}

		for _, m := range wikilink.FindAllInLine(line) {
			if !IsTagText(m.Inner) || seenTags[m.Inner] {
				continue
			}
			seenTags[m.Inner] = true
			in.Tags = append(in.Tags, m.Inner)
		}
	}

	return in
}

// IsConsumedLine reports whether a scanned line is removed from the body once
// its metadata has been absorbed: it is entirely an inline field, or entirely a
// single qualifying tag.
func IsConsumedLine(line string) bool {
	if _, _, ok := ParseInlineField(line); ok {
		return true
	}

	trimmed := strings.TrimSpace(line)
	if utf8.RuneCountInString(trimmed) >= MaxTagLength {
		return false
	}
	m, ok := wikilink.ParseExact(trimmed)
	return ok && IsTagText(m.Inner)
}

// StripInline removes consumed lines from the first ScanWindow lines of body.
// Lines outside the window are never touched.
func StripInline(body string) string {
	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if i < ScanWindow && IsConsumedLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func scanLines(body string) []string {
	lines := strings.SplitN(body, "\n", ScanWindow+1)
	if len(lines) > ScanWindow {
		lines = lines[:ScanWindow]
	}
	return lines
}
