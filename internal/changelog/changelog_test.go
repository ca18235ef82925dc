package changelog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aidanlsb/vaultfm/internal/record"
)

func TestLoggerWritesAndReads(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "enrich", true)
	l.now = func() time.Time { return time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC) }

	if err := l.LogSession(); err != nil {
		t.Fatalf("LogSession() error = %v", err)
	}
	if err := l.LogChanges("Notes/a.md", []record.Change{{Field: "status", Old: "new", New: "completed"}}); err != nil {
		t.Fatalf("LogChanges() error = %v", err)
	}
	if err := l.LogSkip("Notes/b.md", "no changes"); err != nil {
		t.Fatalf("LogSkip() error = %v", err)
	}
	if err := l.LogError("Notes/c.md", errors.New("permission denied")); err != nil {
		t.Fatalf("LogError() error = %v", err)
	}

	// A torn line from an interrupted write is ignored.
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString(`{"ts":`)
	f.Close()

	entries, err := l.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}

	update := entries[1]
	if update.Operation != OpUpdate || update.Note != "Notes/a.md" || !update.DryRun || update.Pass != "enrich" {
		t.Fatalf("update entry = %+v", update)
	}
	if c := update.Changes["status"]; c.Old != "new" || c.New != "completed" {
		t.Fatalf("status change = %+v", c)
	}
	if entries[3].Reason != "permission denied" {
		t.Fatalf("error entry = %+v", entries[3])
	}
}

func TestReadSince(t *testing.T) {
	l := New(t.TempDir(), "migrate", false)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := l.Log(Entry{Timestamp: base.Add(time.Duration(i) * time.Hour), Operation: OpSkip}); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	got, err := l.ReadSince(base.Add(time.Hour))
	if err != nil {
		t.Fatalf("ReadSince() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadSince() = %d entries, want 2", len(got))
	}
}

func TestDisabledLogger(t *testing.T) {
	l := New("", "migrate", false)
	if err := l.LogSession(); err != nil {
		t.Fatalf("LogSession() error = %v", err)
	}
	if entries, err := l.Read(); err != nil || entries != nil {
		t.Fatalf("Read() = %v, %v", entries, err)
	}
}
