package wikilink

import "testing"

func TestParseExact(t *testing.T) {
	tests := []struct {
		in          string
		wantTarget  string
		wantDisplay *string
		wantOK      bool
	}{
		{in: "[[docker]]", wantTarget: "docker", wantOK: true},
		{in: " [[docker]] ", wantTarget: "docker", wantOK: true},
		{
			in:         "[[people/freya|Lady Freya]]",
			wantTarget: "people/freya",
			wantDisplay: func() *string {
				s := "Lady Freya"
				return &s
			}(),
			wantOK: true,
		},
		{in: "[[]]", wantOK: false},
		{in: "[[ ]]", wantOK: false},
		{in: "docker", wantOK: false},
		{in: "[[a]] [[b]]", wantOK: false},
		{in: "see [[a]]", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, ok := ParseExact(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok=%v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if m.Target != tt.wantTarget {
				t.Fatalf("target=%q, want %q", m.Target, tt.wantTarget)
			}
			if (m.Display == nil) != (tt.wantDisplay == nil) {
				t.Fatalf("display nil=%v, want %v", m.Display == nil, tt.wantDisplay == nil)
			}
			if m.Display != nil && *m.Display != *tt.wantDisplay {
				t.Fatalf("display=%q, want %q", *m.Display, *tt.wantDisplay)
			}
		})
	}
}

func TestFindAllInLine(t *testing.T) {
	line := "See [[a]] and [[b|B]] and [[[c]]]"
	m := FindAllInLine(line)
	if len(m) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(m))
	}
	if m[0].Target != "a" || m[1].Target != "b" || m[2].Target != "c" {
		t.Fatalf("unexpected targets: %#v", []string{m[0].Target, m[1].Target, m[2].Target})
	}
	if m[1].Inner != "b|B" {
		t.Fatalf("inner=%q, want %q", m[1].Inner, "b|B")
	}
	if line[m[0].Start:m[0].End] != "[[a]]" {
		t.Fatalf("span=%q", line[m[0].Start:m[0].End])
	}
}

func TestFindAllInLineKeepsUntrimmedInner(t *testing.T) {
	m := FindAllInLine("[[ padded ]]")
	if len(m) != 1 {
		t.Fatalf("expected 1 match, got %d", len(m))
	}
	if m[0].Inner != " padded " {
		t.Fatalf("inner=%q, want untrimmed", m[0].Inner)
	}
	if m[0].Target != "padded" {
		t.Fatalf("target=%q, want padded", m[0].Target)
	}
}
