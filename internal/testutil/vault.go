// Package testutil provides reusable test utilities for vaultfm tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestVault represents a temporary vault for testing.
type TestVault struct {
	Path   string
	t      *testing.T
	config string
	files  map[string]string
	mtimes map[string]time.Time
}

// NewTestVault creates a new test vault builder.
// Call Build() to create the actual vault directory.
func NewTestVault(t *testing.T) *TestVault {
	t.Helper()
	return &TestVault{
		t:      t,
		files:  make(map[string]string),
		mtimes: make(map[string]time.Time),
	}
}

// WithFile adds a file to the vault.
// The path is relative to the vault root.
func (v *TestVault) WithFile(path, content string) *TestVault {
	v.files[path] = content
	return v
}

// WithNote adds a note under Notes/.
func (v *TestVault) WithNote(path, content string) *TestVault {
	return v.WithFile(filepath.Join("Notes", path), content)
}

// WithModTime sets the modification time of a file added with WithFile.
func (v *TestVault) WithModTime(path string, mtime time.Time) *TestVault {
	v.mtimes[path] = mtime
	return v
}

// WithConfig sets the content of config.toml at the vault root. ConfigPath
// returns its location.
func (v *TestVault) WithConfig(toml string) *TestVault {
	v.config = toml
	return v
}

// Build creates the vault directory and all configured files.
// Returns the TestVault for method chaining.
func (v *TestVault) Build() *TestVault {
	v.t.Helper()

	v.Path = v.t.TempDir()

	if v.config != "" {
		v.writeFile("config.toml", v.config)
	}

	for path, content := range v.files {
		v.writeFile(path, content)
	}

	for path, mtime := range v.mtimes {
		full := filepath.Join(v.Path, path)
		if err := os.Chtimes(full, mtime, mtime); err != nil {
			v.t.Fatalf("failed to set mtime on %s: %v", path, err)
		}
	}

	return v
}

// ConfigPath returns the path of the config written by WithConfig.
func (v *TestVault) ConfigPath() string {
	return filepath.Join(v.Path, "config.toml")
}

// writeFile writes a file to the vault, creating directories as needed.
func (v *TestVault) writeFile(relPath, content string) {
	v.t.Helper()
	fullPath := filepath.Join(v.Path, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		v.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the vault.
// Returns the content as a string.
func (v *TestVault) ReadFile(relPath string) string {
	v.t.Helper()
	fullPath := filepath.Join(v.Path, relPath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		v.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the vault.
func (v *TestVault) FileExists(relPath string) bool {
	v.t.Helper()
	fullPath := filepath.Join(v.Path, relPath)
	_, err := os.Stat(fullPath)
	return err == nil
}

// PlainNote returns a note with inline annotations and no frontmatter.
func PlainNote(project string, tags ...string) string {
	content := "Project:: " + project + "\n"
	for _, tag := range tags {
		content += "[[" + tag + "]]\n"
	}
	return content + "\nSome prose about " + project + ".\n"
}

// MigratedNote returns a note with a small flat frontmatter block.
func MigratedNote(status string) string {
	return "---\nstatus: " + status + "\ntags: []\ncategory: \n---\n\nBody text.\n"
}
