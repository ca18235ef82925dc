package pipeline

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aidanlsb/vaultfm/internal/parser"
	"github.com/aidanlsb/vaultfm/internal/record"
)

var now = time.Date(2025, time.November, 4, 10, 0, 0, 0, time.UTC)

func TestMigrateInlineFieldsAndTags(t *testing.T) {
	content := "Project:: Falcon\n[[docker]]\n\nThe build uses [[Long Design Note]] for context.\n"

	res := Migrate(MigrateInput{
		Content:  content,
		Created:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Modified: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Now:      now,
	})

	if got, _ := res.Record.Get("project"); got != "Falcon" {
		t.Errorf("project = %#v", got)
	}
	tags, _ := res.Record.Get("tags")
	if fmt.Sprint(tags) != "[docker]" {
		t.Errorf("tags = %#v", tags)
	}
	notes, _ := res.Record.Get("notes")
	if s, _ := notes.(string); !strings.Contains(s, "project") || !strings.Contains(s, "docker") {
		t.Errorf("notes = %#v, want mention of project and docker", notes)
	}

	if strings.Contains(res.Content, "Project::") {
		t.Errorf("inline field line not stripped:\n%s", res.Content)
	}
	if strings.Contains(res.Content, "\n[[docker]]") {
		t.Errorf("tag line not stripped:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "[[Long Design Note]]") {
		t.Errorf("long link must survive:\n%s", res.Content)
	}
	if !strings.HasSuffix(res.Content, "---\nThe build uses [[Long Design Note]] for context.\n") {
		t.Errorf("body should follow the block without blank lines:\n%s", res.Content)
	}
	if res.HadFrontmatter || res.DecodeFailed || !res.Changed {
		t.Errorf("flags = %+v", res)
	}
}

func TestMigrateExistingFrontmatter(t *testing.T) {
	content := "---\nTitle: ignored\nStatus: in-progress\ntags: [ai]\n---\n\n# Heading\n"

	res := Migrate(MigrateInput{Content: content, Now: now})

	if !res.HadFrontmatter {
		t.Fatal("HadFrontmatter = false")
	}
	if got, _ := res.Record.Get("status"); got != "in-progress" {
		t.Errorf("status = %#v", got)
	}
	if strings.Contains(res.Content, "Title") {
		t.Errorf("non-schema key leaked:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "tags: [ai]\n") {
		t.Errorf("tags not rendered:\n%s", res.Content)
	}
	if !strings.HasSuffix(res.Content, "notes:\n---\n# Heading\n") {
		t.Errorf("unexpected tail:\n%s", res.Content)
	}
}

func TestMigrateIsStableApartFromMigrationDate(t *testing.T) {
	content := "Project:: Falcon\n[[docker]]\nBody\n"

	first := Migrate(MigrateInput{Content: content, Now: now})
	second := Migrate(MigrateInput{Content: first.Content, Now: now})
	if second.Content != first.Content {
		t.Fatalf("second run changed output:\n%s\nvs\n%s", second.Content, first.Content)
	}
	if second.Changed {
		t.Error("Changed = true for an identical rewrite")
	}

	later := Migrate(MigrateInput{Content: first.Content, Now: now.AddDate(0, 0, 1)})
	if later.Content == first.Content {
		t.Error("always policy should restamp migration_date")
	}

	pinned := Migrate(MigrateInput{Content: first.Content, Now: now.AddDate(0, 0, 1), Stamp: record.StampFirst})
	if pinned.Content != first.Content {
		t.Errorf("first policy changed output:\n%s", pinned.Content)
	}
}

func TestMigrateRereadsIndicatorValues(t *testing.T) {
	for _, project := range []string{
		"[WIP] Falcon",
		"{draft} Falcon",
		"'quoted' Falcon",
		"&anchor",
		"*starred",
		"!urgent",
		"| piped",
		"> folded",
		"@home",
		"`code`",
		"true",
		"2024",
	} {
		t.Run(project, func(t *testing.T) {
			content := "Project:: " + project + "\n[[docker]]\nprose\n"

			first := Migrate(MigrateInput{Content: content, Now: now, Stamp: record.StampFirst})
			second := Migrate(MigrateInput{Content: first.Content, Now: now, Stamp: record.StampFirst})

			if second.DecodeFailed {
				t.Fatalf("rendered block does not decode:\n%s", first.Content)
			}
			if second.Content != first.Content {
				t.Fatalf("second run changed output:\n%s\nvs\n%s", second.Content, first.Content)
			}
			if got := strings.Count(second.Content, "---\n"); got != 2 {
				t.Fatalf("delimiter count = %d, want 2:\n%s", got, second.Content)
			}
			block, _, ok := parser.SplitFrontmatter(second.Content)
			if !ok {
				t.Fatalf("no frontmatter block in:\n%s", second.Content)
			}
			fields, err := parser.DecodeFrontmatter(block)
			if err != nil {
				t.Fatalf("DecodeFrontmatter() error = %v", err)
			}
			if fields["project"] != project {
				t.Fatalf("project = %#v, want %q", fields["project"], project)
			}
		})
	}
}

type warnCounter struct{ n int }

func (w *warnCounter) Debug(string, ...any) {}
func (w *warnCounter) Info(string, ...any)  {}
func (w *warnCounter) Warn(string, ...any)  { w.n++ }
func (w *warnCounter) Error(string, ...any) {}

func TestMigrateUndecodableFrontmatter(t *testing.T) {
	content := "---\ntags: [broken\n---\nBody\n"
	logger := &warnCounter{}

	res := Migrate(MigrateInput{Content: content, Now: now, Logger: logger})

	if !res.DecodeFailed || res.HadFrontmatter {
		t.Fatalf("flags = %+v", res)
	}
	if logger.n != 1 {
		t.Fatalf("warnings = %d, want 1", logger.n)
	}
	if got, _ := res.Record.Get("status"); got != "new" {
		t.Errorf("status = %#v, want default", got)
	}
	if !strings.Contains(res.Content, "tags: [broken") {
		t.Errorf("original text should be kept as body:\n%s", res.Content)
	}
}

func TestEnrich(t *testing.T) {
	content := "---\nstatus: new\ntags: [ai]\ncategory: \n---\n\nBody text\n"

	res := Enrich(EnrichInput{
		Content: content,
		Suggestions: record.Suggestions{
			"status":   "in-progress",
			"tags":     []string{"ai", "llm"},
			"category": "Technical",
			"bogus":    "x",
		},
	})

	if res.Skipped {
		t.Fatalf("Skipped: %s", res.SkipReason)
	}
	if len(res.Changes) != 3 {
		t.Fatalf("changes = %+v", res.Changes)
	}
	want := "---\nstatus: in-progress\ncategory: Technical\ntags: [ai, llm]\n---\nBody text\n"
	if res.Content != want {
		t.Fatalf("Content = %q, want %q", res.Content, want)
	}
}

func TestEnrichSkips(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		suggestions record.Suggestions
		reason      string
	}{
		{"no block", "Body", record.Suggestions{"category": "x"}, SkipNoFrontmatter},
		{"empty block", "---\n---\nBody", record.Suggestions{"category": "x"}, SkipNoFrontmatter},
		{"broken block", "---\na: [\n---\nBody", record.Suggestions{"category": "x"}, SkipNoFrontmatter},
		{"no suggestions", "---\nstatus: new\n---\nBody", nil, SkipNoSuggestions},
		{"nothing to change", "---\nstatus: done\n---\nBody", record.Suggestions{"status": "new"}, SkipNoChanges},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Enrich(EnrichInput{Content: tt.content, Suggestions: tt.suggestions})
			if !res.Skipped || res.SkipReason != tt.reason {
				t.Fatalf("got skipped=%v reason=%q, want %q", res.Skipped, res.SkipReason, tt.reason)
			}
			if res.Content != tt.content {
				t.Fatalf("skipped content changed: %q", res.Content)
			}
		})
	}
}

func TestMigrateThenScanLeavesNoInlineData(t *testing.T) {
	res := Migrate(MigrateInput{Content: "Status:: draft\n[[ai]]\n[[ml]]\nText", Now: now})
	_, body, ok := parser.SplitFrontmatter(res.Content)
	if !ok {
		t.Fatal("rewritten note has no block")
	}
	if in := parser.ScanInline(body); !in.Empty() {
		t.Fatalf("body still has inline data: %+v", in)
	}
}
