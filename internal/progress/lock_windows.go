//go:build windows

package progress

import (
	"errors"
	"fmt"
	"os"
)

// ErrLocked is returned when another run holds the pass lock.
var ErrLocked = errors.New("progress is locked by another run")

// runLock uses an exclusively created file; a stale lock from a crashed run
// must be removed by hand.
type runLock struct {
	path string
}

func acquireLock(path string) (*runLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("failed to acquire progress lock: %w", err)
	}
	f.Close()
	return &runLock{path: path}, nil
}

func (l *runLock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}
	err := os.Remove(l.path)
	l.path = ""
	return err
}
