//go:build darwin

package vault

import (
	"os"
	"syscall"
	"time"
)

// FileTimes returns the creation and modification times of a file.
func FileTimes(info os.FileInfo) (created, modified time.Time) {
	modified = info.ModTime()
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Birthtimespec.Sec), int64(st.Birthtimespec.Nsec)), modified
	}
	return modified, modified
}
