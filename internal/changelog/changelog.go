// Package changelog provides an append-only JSON-lines log of what each run
// changed, for review after a batch.
package changelog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aidanlsb/vaultfm/internal/record"
)

// FileName is the log file name inside the state directory.
const FileName = "changes.log"

// Operations recorded in the log.
const (
	OpSession = "session"
	OpUpdate  = "update"
	OpSkip    = "skip"
	OpError   = "error"
)

// FieldChange is one field's old and new value.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Entry represents a single log entry.
type Entry struct {
	Timestamp time.Time              `json:"ts"`
	Operation string                 `json:"op"`
	Pass      string                 `json:"pass"`
	DryRun    bool                   `json:"dry_run"`
	Note      string                 `json:"note,omitempty"`
	Reason    string                 `json:"reason,omitempty"`
	Changes   map[string]FieldChange `json:"changes,omitempty"`
}

// Logger appends entries to the log.
type Logger struct {
	path    string
	pass    string
	dryRun  bool
	enabled bool
	now     func() time.Time
	mu      sync.Mutex
}

// New creates a logger writing to dir/changes.log for one pass.
// If dir is empty, the logger is a no-op.
func New(dir, pass string, dryRun bool) *Logger {
	if dir == "" {
		return &Logger{}
	}
	return &Logger{
		path:    filepath.Join(dir, FileName),
		pass:    pass,
		dryRun:  dryRun,
		enabled: true,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Path returns the log file location.
func (l *Logger) Path() string { return l.path }

// Log writes an entry, filling in timestamp, pass and mode.
func (l *Logger) Log(entry Entry) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	entry.Pass = l.pass
	entry.DryRun = l.dryRun

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal change entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create change log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open change log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write change entry: %w", err)
	}
	return nil
}

// LogSession marks the start of a run.
func (l *Logger) LogSession() error {
	return l.Log(Entry{Operation: OpSession})
}

// LogChanges records the fields a note had changed.
func (l *Logger) LogChanges(note string, changes []record.Change) error {
	m := make(map[string]FieldChange, len(changes))
	for _, c := range changes {
		m[c.Field] = FieldChange{Old: c.Old, New: c.New}
	}
	return l.Log(Entry{Operation: OpUpdate, Note: note, Changes: m})
}

// LogSkip records a note left untouched.
func (l *Logger) LogSkip(note, reason string) error {
	return l.Log(Entry{Operation: OpSkip, Note: note, Reason: reason})
}

// LogError records a failed note.
func (l *Logger) LogError(note string, cause error) error {
	return l.Log(Entry{Operation: OpError, Note: note, Reason: cause.Error()})
}

// Read reads all entries from the log. Malformed lines are skipped.
func (l *Logger) Read() ([]Entry, error) {
	if !l.enabled {
		return nil, nil
	}
	return ReadFile(l.path)
}

// ReadFile reads all entries from a log file.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read change log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read change log: %w", err)
	}
	return entries, nil
}

// ReadSince returns entries at or after since.
func (l *Logger) ReadSince(since time.Time) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}

	var filtered []Entry
	for _, entry := range all {
		if !entry.Timestamp.Before(since) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}
