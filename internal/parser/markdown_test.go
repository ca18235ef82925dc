package parser

import "testing"

func TestExtractHeadings(t *testing.T) {
	content := "# Falcon\n\nIntro\n\n## Setup\n\n```\n# not a heading\n```\n\n### Docker\n"

	headings := ExtractHeadings(content)
	if len(headings) != 3 {
		t.Fatalf("len(headings) = %d, want 3: %+v", len(headings), headings)
	}

	want := []Heading{
		{Level: 1, Text: "Falcon", Line: 1},
		{Level: 2, Text: "Setup", Line: 5},
		{Level: 3, Text: "Docker", Line: 11},
	}
	for i, h := range headings {
		if h != want[i] {
			t.Errorf("headings[%d] = %+v, want %+v", i, h, want[i])
		}
	}
}

func TestOutline(t *testing.T) {
	content := "# A\n## B\n## C\n"

	if got, want := Outline(content, 0), "- A\n  - B\n  - C\n"; got != want {
		t.Fatalf("Outline() = %q, want %q", got, want)
	}
	if got, want := Outline(content, 2), "- A\n  - B\n"; got != want {
		t.Fatalf("Outline(max=2) = %q, want %q", got, want)
	}
}
