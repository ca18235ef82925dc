package ui

import (
	"strings"
	"testing"
)

func TestRenderMarkdownNormalizesTrailingNewline(t *testing.T) {
	t.Parallel()

	out, err := RenderMarkdown("# Heading", 80)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected rendered markdown to end with newline, got %q", out)
	}
	if strings.HasSuffix(out, "\n\n") {
		t.Fatalf("expected single trailing newline, got %q", out)
	}
}

func TestRenderMarkdownDefaultsWidthWhenNonPositive(t *testing.T) {
	t.Parallel()

	out, err := RenderMarkdown("hello", 0)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatalf("expected non-empty rendered output")
	}
}

func TestRenderFrontmatterKeepsFields(t *testing.T) {
	t.Parallel()

	out, err := RenderFrontmatter("Notes/falcon.md", "---\nproject: Falcon\nstatus: active\n---\n", 80)
	if err != nil {
		t.Fatalf("RenderFrontmatter() error = %v", err)
	}
	for _, want := range []string{"Notes/falcon.md", "project", "Falcon", "status"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected preview to contain %q, got %q", want, out)
		}
	}
}

func TestMarkdownStyleUsesCodeTheme(t *testing.T) {
	style := markdownStyle()
	if style.CodeBlock.Theme != codeTheme {
		t.Fatalf("CodeBlock.Theme = %q, want %q", style.CodeBlock.Theme, codeTheme)
	}
	if style.Heading.Bold == nil || !*style.Heading.Bold {
		t.Fatalf("expected bold headings")
	}
}
