// Package paths converts between absolute note paths and the vault-relative,
// slash-separated form used for globbing, progress keys and log output.
package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathOutsideVault is returned when a path resolves outside the vault root.
var ErrPathOutsideVault = errors.New("path is outside the vault")

// NormalizeRelPath normalizes a vault-relative path-like value:
// - converts OS separators to '/'
// - trims leading "./" and leading "/"
// - collapses repeated '/'
func NormalizeRelPath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// Rel returns path relative to root in slash form.
func Rel(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("relative path for %s: %w", path, err)
	}
	return NormalizeRelPath(rel), nil
}

// ValidateWithinVault returns ErrPathOutsideVault when path, after cleaning
// and symlink resolution, does not live under root.
func ValidateWithinVault(root, path string) error {
	absRoot, err := resolve(root)
	if err != nil {
		return err
	}
	absPath, err := resolve(path)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathOutsideVault, path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrPathOutsideVault, path)
	}
	return nil
}

func resolve(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// Title returns the note title for a path: its file name without extension.
func Title(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
