// Package parser splits and decodes note frontmatter and scans inline
// annotations in the note body.
package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/vaultfm/internal/logging"
)

// Delimiter opens and closes a frontmatter block.
const Delimiter = "---"

// FrontmatterBounds returns the index of the closing delimiter line.
// It only detects frontmatter when the first line is the delimiter.
// If frontmatter is opened but never closed, endLine is -1.
func FrontmatterBounds(lines []string) (endLine int, ok bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Delimiter {
		return -1, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Delimiter {
			return i, true
		}
	}

	return -1, true
}

// SplitFrontmatter separates the leading frontmatter block from the body.
//
// block is the text strictly between the delimiter lines; body is everything
// after the closing delimiter line. When the text does not open with a
// delimiter line, or the block is never closed, ok is false and body is the
// unchanged text.
func SplitFrontmatter(content string) (block string, body string, ok bool) {
	lines := strings.Split(content, "\n")

	endLine, opened := FrontmatterBounds(lines)
	if !opened || endLine == -1 {
		return "", content, false
	}

	block = strings.Join(lines[1:endLine], "\n")
	body = strings.Join(lines[endLine+1:], "\n")
	return block, body, true
}

// DecodeFrontmatter decodes block content into a mapping. Keys keep their
// original case and values are whatever YAML produced. An empty or
// comment-only block decodes to an empty map.
func DecodeFrontmatter(block string) (map[string]any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(block), &node); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter as YAML: %w", err)
	}

	if node.Kind == 0 || len(node.Content) == 0 {
		return map[string]any{}, nil
	}

	doc := node.Content[0]
	if doc.Kind == yaml.ScalarNode && doc.Tag == "!!null" {
		return map[string]any{}, nil
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse frontmatter as YAML: top level is not a mapping")
	}

	var data map[string]any
	if err := doc.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter as YAML: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// Frontmatter is the result of extracting a note's existing metadata.
type Frontmatter struct {
	// Fields is nil when the note had no usable frontmatter.
	Fields map[string]any
	// Body is the text the rest of the pipeline works on.
	Body string
	// Present is true when a closed block was found, even if it did not decode.
	Present bool
	// DecodeErr is set when a block was present but could not be decoded.
	DecodeErr error
}

// ExtractFrontmatter splits and decodes the leading block. Decode failures are
// logged as warnings and degrade to "no frontmatter": Fields is nil and Body is
// the full original text.
func ExtractFrontmatter(content string, logger logging.Logger) Frontmatter {
	block, body, ok := SplitFrontmatter(content)
	if !ok {
		return Frontmatter{Body: content}
	}

	fields, err := DecodeFrontmatter(block)
	if err != nil {
		logging.OrNoOp(logger).Warn("could not parse existing frontmatter", "error", err)
		return Frontmatter{Body: content, Present: true, DecodeErr: err}
	}

	return Frontmatter{Fields: fields, Body: body, Present: true}
}
