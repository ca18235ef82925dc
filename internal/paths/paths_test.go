package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeRelPath(t *testing.T) {
	tests := map[string]string{
		"./Notes/a.md":   "Notes/a.md",
		"/Notes//b.md":   "Notes/b.md",
		"Notes/AANext/c": "Notes/AANext/c",
		"":               "",
	}
	for in, want := range tests {
		if got := NormalizeRelPath(in); got != want {
			t.Errorf("NormalizeRelPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRel(t *testing.T) {
	root := t.TempDir()
	got, err := Rel(root, filepath.Join(root, "Notes", "Local AI", "x.md"))
	if err != nil {
		t.Fatalf("Rel() error = %v", err)
	}
	if got != "Notes/Local AI/x.md" {
		t.Fatalf("Rel() = %q", got)
	}
}

func TestValidateWithinVault(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "Notes", "a.md")
	if err := os.MkdirAll(filepath.Dir(inside), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(inside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ValidateWithinVault(root, inside); err != nil {
		t.Fatalf("ValidateWithinVault(inside) error = %v", err)
	}

	outside := filepath.Join(root, "..", "elsewhere.md")
	if err := ValidateWithinVault(root, outside); !errors.Is(err, ErrPathOutsideVault) {
		t.Fatalf("ValidateWithinVault(outside) error = %v, want ErrPathOutsideVault", err)
	}
}

func TestTitle(t *testing.T) {
	if got := Title("Notes/Local AI/Ollama setup.md"); got != "Ollama setup" {
		t.Fatalf("Title() = %q", got)
	}
}
