//go:build windows

package vault

import (
	"os"
	"syscall"
	"time"
)

// FileTimes returns the creation and modification times of a file.
func FileTimes(info os.FileInfo) (created, modified time.Time) {
	modified = info.ModTime()
	if attr, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, attr.CreationTime.Nanoseconds()), modified
	}
	return modified, modified
}
