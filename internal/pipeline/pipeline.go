// Package pipeline runs the per-note extract, merge and render steps of both
// passes. Everything here is pure: callers do the reading and writing.
package pipeline

import (
	"time"

	"github.com/aidanlsb/vaultfm/internal/logging"
	"github.com/aidanlsb/vaultfm/internal/parser"
	"github.com/aidanlsb/vaultfm/internal/record"
	"github.com/aidanlsb/vaultfm/internal/render"
)

// Skip reasons reported by Enrich.
const (
	SkipNoFrontmatter = "no frontmatter"
	SkipNoSuggestions = "no suggestions"
	SkipNoChanges     = "no changes"
)

// MigrateInput is one note for the base pass.
type MigrateInput struct {
	Content  string
	Created  time.Time
	Modified time.Time
	Now      time.Time
	Stamp    record.StampPolicy
	Logger   logging.Logger
}

// MigrateResult is the rewritten note and what went into it.
type MigrateResult struct {
	Content        string
	Record         *record.Record
	Inline         parser.Inline
	HadFrontmatter bool
	DecodeFailed   bool
	// Changed is false when the rewrite is byte-identical to the input.
	Changed bool
}

// Migrate rewrites a note's frontmatter into the canonical commented block
// and strips the inline annotations it absorbed.
func Migrate(in MigrateInput) MigrateResult {
	fm := parser.ExtractFrontmatter(in.Content, in.Logger)
	inline := parser.ScanInline(fm.Body)

	rec := record.Merge(record.MergeInput{
		Existing: fm.Fields,
		Inline:   inline,
		Now:      in.Now,
		Created:  in.Created,
		Modified: in.Modified,
		Stamp:    in.Stamp,
	})

	block := render.Frontmatter(rec, render.Options{Comments: true})
	content := render.Document(block, parser.StripInline(fm.Body))

	return MigrateResult{
		Content:        content,
		Record:         rec,
		Inline:         inline,
		HadFrontmatter: fm.Present && fm.DecodeErr == nil,
		DecodeFailed:   fm.DecodeErr != nil,
		Changed:        content != in.Content,
	}
}

// EnrichInput is one note plus the suggestions produced for it.
type EnrichInput struct {
	Content     string
	Suggestions record.Suggestions
	Logger      logging.Logger
}

// EnrichResult is the outcome of the enrichment overlay. When Skipped is
// true, Content is the unchanged input and should not be written.
type EnrichResult struct {
	Content    string
	Record     *record.Record
	Changes    []record.Change
	Skipped    bool
	SkipReason string
}

// Existing returns the decoded frontmatter and body the enrichment pass
// works on. ok is false when the note has no usable frontmatter.
func Existing(content string, logger logging.Logger) (fields map[string]any, body string, ok bool) {
	fm := parser.ExtractFrontmatter(content, logger)
	if len(fm.Fields) == 0 {
		return nil, content, false
	}
	return fm.Fields, fm.Body, true
}

// Enrich overlays suggestions on the note's existing frontmatter and renders
// the present fields without category comments.
func Enrich(in EnrichInput) EnrichResult {
	fields, body, ok := Existing(in.Content, in.Logger)
	if !ok {
		return skipped(in.Content, nil, SkipNoFrontmatter)
	}

	rec := record.FromExisting(fields)
	if len(in.Suggestions) == 0 {
		return skipped(in.Content, rec, SkipNoSuggestions)
	}

	changes := record.ApplySuggestions(rec, in.Suggestions)
	if len(changes) == 0 {
		return skipped(in.Content, rec, SkipNoChanges)
	}

	block := render.Frontmatter(rec, render.Options{})
	return EnrichResult{
		Content: render.Document(block, body),
		Record:  rec,
		Changes: changes,
	}
}

func skipped(content string, rec *record.Record, reason string) EnrichResult {
	return EnrichResult{Content: content, Record: rec, Skipped: true, SkipReason: reason}
}
