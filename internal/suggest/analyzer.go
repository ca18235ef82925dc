// Package suggest asks a text-generation model for frontmatter values and
// turns its reply into validated suggestions.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/aidanlsb/vaultfm/internal/logging"
	"github.com/aidanlsb/vaultfm/internal/record"
	"github.com/aidanlsb/vaultfm/internal/schema"
)

// ErrNoJSON is returned when a reply holds no JSON object.
var ErrNoJSON = errors.New("no JSON object in model reply")

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config tunes an Analyzer.
type Config struct {
	ContentLimit int
	// NormalizeTags slugifies suggested tags and topics.
	NormalizeTags bool
	Logger        logging.Logger
}

// Analyzer produces suggestions for notes.
type Analyzer struct {
	gen    Generator
	cfg    Config
	logger logging.Logger
}

// NewAnalyzer wraps gen.
func NewAnalyzer(gen Generator, cfg Config) *Analyzer {
	return &Analyzer{gen: gen, cfg: cfg, logger: logging.OrNoOp(cfg.Logger)}
}

// Suggest asks the model about note. A failed request or unusable reply is
// returned as an error with nil suggestions; callers treat that as "no
// suggestions" rather than a note failure.
func (a *Analyzer) Suggest(ctx context.Context, note Note) (record.Suggestions, error) {
	reply, err := a.gen.Generate(ctx, BuildPrompt(note, a.cfg.ContentLimit))
	if err != nil {
		return nil, fmt.Errorf("generate suggestions: %w", err)
	}

	suggestions, issues, err := ParseResponse(reply)
	if err != nil {
		a.logger.Warn("could not parse model reply", "note", note.Title, "error", err, "reply", preview(reply))
		return nil, err
	}
	for _, issue := range issues {
		a.logger.Warn("dropped suggestion", "note", note.Title, "field", issue.Field, "reason", issue.Message)
	}

	if a.cfg.NormalizeTags {
		NormalizeLists(suggestions)
	}
	return suggestions, nil
}

// ParseResponse extracts the JSON object spanning the first '{' to the last
// '}' of reply, decodes it and validates it.
func ParseResponse(reply string) (record.Suggestions, []Issue, error) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end < start {
		return nil, nil, ErrNoJSON
	}

	dec := json.NewDecoder(strings.NewReader(reply[start : end+1]))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decode model reply: %w", err)
	}
	return Validate(raw)
}

// NormalizeLists slugifies the tags and topics lists in place, dropping
// entries that slugify to nothing and collapsing duplicates.
func NormalizeLists(s record.Suggestions) {
	for _, field := range []string{schema.FieldTags, schema.FieldTopics} {
		list, ok := s[field].([]string)
		if !ok {
			continue
		}
		seen := map[string]bool{}
		out := make([]string, 0, len(list))
		for _, item := range list {
			norm := slug.Make(item)
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			out = append(out, norm)
		}
		s[field] = out
	}
}

func preview(s string) string {
	const max = 200
	if r := []rune(s); len(r) > max {
		return string(r[:max])
	}
	return s
}
