// Package atomicfile replaces files through a temp file and rename, so a note
// is either fully rewritten or left untouched.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultPerm os.FileMode = 0o644

// WriteFile replaces path with data.
//
// The data is written and synced to a hidden temp file next to path, then
// renamed over it. A zero perm keeps the mode of the file being replaced, or
// falls back to 0644 for new files.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		perm = existingMode(path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := fill(tmp, data, perm); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := replace(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// WriteString is WriteFile for string content, keeping the existing mode.
func WriteString(path, content string) error {
	return WriteFile(path, []byte(content), 0)
}

func existingMode(path string) os.FileMode {
	if st, err := os.Stat(path); err == nil {
		return st.Mode().Perm()
	}
	return defaultPerm
}

func fill(f *os.File, data []byte, perm os.FileMode) error {
	defer f.Close()

	// Some filesystems reject chmod on temp files; the write still matters more.
	_ = f.Chmod(perm)

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}

// replace renames src over dst. Windows refuses to rename onto an existing
// file, so on failure dst is removed and the rename retried.
func replace(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	_ = os.Remove(dst)
	if err2 := os.Rename(src, dst); err2 != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
