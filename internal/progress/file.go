package progress

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/vaultfm/internal/atomicfile"
)

// FileStore keeps progress in a YAML file.
type FileStore struct {
	path string
}

var _ Backend = (*FileStore)(nil)

// NewFileStore returns a backend for the YAML file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the file. A missing file yields nil state.
func (f *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read progress: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse progress %s: %w", f.path, err)
	}
	return &st, nil
}

// Persist writes the state atomically.
func (f *FileStore) Persist(st *State) error {
	content, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := atomicfile.WriteFile(f.path, content, 0o644); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	return nil
}

// Path returns the file location.
func (f *FileStore) Path() string { return f.path }

// Close is a no-op.
func (f *FileStore) Close() error { return nil }
