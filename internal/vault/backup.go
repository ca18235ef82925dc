package vault

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// backupStampLayout suffixes a backup name when the plain name is taken.
const backupStampLayout = "20060102_150405"

// BackupTarget returns where a backup named name would be written under
// root: root/name, or root/name_YYYYMMDD_HHMMSS when that already exists.
func BackupTarget(root, name string, now time.Time) string {
	target := filepath.Join(root, name)
	if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
		return target
	}
	return filepath.Join(root, name+"_"+now.Format(backupStampLayout))
}

// Backup copies the directory src into BackupTarget(root, name, now) and
// returns the directory written. File modes and modification times are kept.
func Backup(root, src, name string, now time.Time) (string, error) {
	target := BackupTarget(root, name, now)

	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("backup source: %w", err)
	}
	if !srcInfo.IsDir() {
		return "", fmt.Errorf("backup source %s is not a directory", src)
	}
	if err := os.Mkdir(target, srcInfo.Mode().Perm()); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		dst := filepath.Join(target, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(dst, info.Mode().Perm())
		case info.Mode().IsRegular():
			return copyFile(path, dst, info)
		default:
			// Symlinks and special files are not part of a note backup.
			return nil
		}
	})
	if err != nil {
		return target, fmt.Errorf("copy notes to backup: %w", err)
	}
	return target, nil
}

func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
