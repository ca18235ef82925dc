//go:build !linux && !darwin && !windows

package vault

import (
	"os"
	"time"
)

// FileTimes returns the modification time for both values on platforms
// without a creation time.
func FileTimes(info os.FileInfo) (created, modified time.Time) {
	return info.ModTime(), info.ModTime()
}
