// Package vault lists the notes of a vault and takes backups before live runs.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aidanlsb/vaultfm/internal/paths"
)

// File is a markdown note found in the vault.
type File struct {
	// Path is the absolute path on disk.
	Path string
	// RelPath is the vault-relative slash path, used as the note's identity.
	RelPath  string
	Created  time.Time
	Modified time.Time
}

// Filter selects which notes are listed.
type Filter struct {
	// Dir is the vault-relative directory to walk; empty walks the whole vault.
	Dir string
	// Include patterns are doublestar globs or plain folder paths relative to
	// the vault. A plain folder matches everything beneath it. Empty includes
	// every note under Dir.
	Include []string
	// Exclude patterns use the same syntax and win over Include.
	Exclude []string
	// SkipDirs are directory names never descended into, in addition to
	// hidden directories.
	SkipDirs []string
}

// ListMarkdownFiles returns the .md files selected by f, in lexical order of
// their relative paths.
func ListMarkdownFiles(root string, f Filter) ([]File, error) {
	start := root
	if dir := paths.NormalizeRelPath(f.Dir); dir != "" {
		start = filepath.Join(root, filepath.FromSlash(dir))
	}

	st, err := os.Stat(start)
	if err != nil {
		return nil, fmt.Errorf("notes directory: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("notes directory: %s is not a directory", start)
	}

	include := expandPatterns(f.Include)
	exclude := expandPatterns(f.Exclude)
	skip := make(map[string]bool, len(f.SkipDirs))
	for _, d := range f.SkipDirs {
		skip[d] = true
	}

	var files []File
	err = filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != start && (strings.HasPrefix(name, ".") || skip[name]) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		rel, err := paths.Rel(root, path)
		if err != nil {
			return err
		}
		if len(include) > 0 && !matchesAny(include, rel) {
			return nil
		}
		if matchesAny(exclude, rel) {
			return nil
		}

		if err := paths.ValidateWithinVault(root, path); err != nil {
			if errors.Is(err, paths.ErrPathOutsideVault) {
				return nil
			}
			return err
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", rel, err)
		}
		created, modified := FileTimes(info)
		files = append(files, File{Path: path, RelPath: rel, Created: created, Modified: modified})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ValidatePattern reports whether p is a usable include/exclude pattern.
func ValidatePattern(p string) bool {
	for _, exp := range expandPatterns([]string{p}) {
		if !doublestar.ValidatePattern(exp) {
			return false
		}
	}
	return true
}

func expandPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSuffix(paths.NormalizeRelPath(strings.TrimSpace(p)), "/")
		if p == "" {
			continue
		}
		if hasMeta(p) {
			out = append(out, p)
			continue
		}
		out = append(out, p, p+"/**")
	}
	return out
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
