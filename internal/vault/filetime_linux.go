//go:build linux

package vault

import (
	"os"
	"syscall"
	"time"
)

// FileTimes returns the creation and modification times of a file. Linux
// exposes no portable birth time; the inode change time stands in for it.
func FileTimes(info os.FileInfo) (created, modified time.Time) {
	modified = info.ModTime()
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec)), modified
	}
	return modified, modified
}
