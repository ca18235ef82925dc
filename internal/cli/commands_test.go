package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aidanlsb/vaultfm/internal/batch"
	"github.com/aidanlsb/vaultfm/internal/changelog"
	"github.com/aidanlsb/vaultfm/internal/config"
	"github.com/aidanlsb/vaultfm/internal/progress"
	"github.com/aidanlsb/vaultfm/internal/testutil"
)

const plainNote = "Project:: Falcon\n[[ai]]\n\nBody text.\n"

func runMigrate(t *testing.T) (string, error) {
	t.Helper()
	withContext(t, migrateCmd)

	var err error
	out := captureStdout(t, func() {
		err = migrateCmd.RunE(migrateCmd, nil)
	})
	return out, err
}

func decodeSummary(t *testing.T, resp jsonResponse) batch.Summary {
	t.Helper()
	var s batch.Summary
	if err := json.Unmarshal(resp.Data, &s); err != nil {
		t.Fatalf("decode summary: %v; data=%s", err, resp.Data)
	}
	return s
}

func TestMigrateCommandDryRunJSON(t *testing.T) {
	v := testutil.NewTestVault(t).WithNote("falcon.md", plainNote).Build()
	useConfig(t, testConfig(v.Path))
	jsonOutput = true

	out, err := runMigrate(t)
	if err != nil {
		t.Fatalf("migrate error = %v; out=%s", err, out)
	}

	resp := decodeResponse(t, out)
	if !resp.OK {
		t.Fatalf("expected ok=true; out=%s", out)
	}
	s := decodeSummary(t, resp)
	if !s.DryRun || s.Total != 1 || s.Updated != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if resp.Meta == nil || resp.Meta.Count != 1 {
		t.Fatalf("meta = %+v", resp.Meta)
	}

	if got := v.ReadFile("Notes/falcon.md"); got != plainNote {
		t.Fatalf("dry run modified the note:\n%s", got)
	}
	v.AssertFileNotExists(config.DefaultBackupDir)
}

func TestMigrateCommandLive(t *testing.T) {
	v := testutil.NewTestVault(t).WithNote("falcon.md", plainNote).Build()
	c := testConfig(v.Path)
	c.SetDryRun(false)
	useConfig(t, c)
	jsonOutput = true
	yesFlag = true

	out, err := runMigrate(t)
	if err != nil {
		t.Fatalf("migrate error = %v; out=%s", err, out)
	}
	s := decodeSummary(t, decodeResponse(t, out))
	if s.DryRun || s.Updated != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if s.Backup == "" {
		t.Fatal("expected a backup directory in the summary")
	}

	v.AssertFrontmatterLine("Notes/falcon.md", "project: Falcon")
	v.AssertFileNotContains("Notes/falcon.md", "Project:: Falcon")
	v.AssertFileContains(filepath.Join(config.DefaultBackupDir, "falcon.md"), "Project:: Falcon")

	// A second live run finds the note already processed.
	out, err = runMigrate(t)
	if err != nil {
		t.Fatalf("second migrate error = %v; out=%s", err, out)
	}
	if s := decodeSummary(t, decodeResponse(t, out)); s.Updated != 0 || s.Skipped != 1 {
		t.Fatalf("second summary = %+v", s)
	}
}

func TestMigrateCommandLiveNeedsConfirmation(t *testing.T) {
	v := testutil.NewTestVault(t).WithNote("falcon.md", plainNote).Build()
	c := testConfig(v.Path)
	c.SetDryRun(false)
	useConfig(t, c)
	jsonOutput = true

	out, err := runMigrate(t)
	if !errors.Is(err, errReported) {
		t.Fatalf("migrate = %v, want errReported", err)
	}
	if resp := decodeResponse(t, out); resp.Error == nil || resp.Error.Code != ErrConfirmationRequired {
		t.Fatalf("unexpected response: %s", out)
	}
	if got := v.ReadFile("Notes/falcon.md"); got != plainNote {
		t.Fatal("note was modified without confirmation")
	}
}

func TestMigrateCommandTextSummary(t *testing.T) {
	v := testutil.NewTestVault(t).WithNote("falcon.md", plainNote).Build()
	useConfig(t, testConfig(v.Path))

	out, err := runMigrate(t)
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}
	for _, want := range []string{"Migration summary", "updated", "Dry run: nothing was written"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMigrateCommandMissingNotesDir(t *testing.T) {
	useConfig(t, testConfig(t.TempDir()))
	jsonOutput = true

	out, err := runMigrate(t)
	if !errors.Is(err, errReported) {
		t.Fatalf("migrate = %v, want errReported", err)
	}
	if resp := decodeResponse(t, out); resp.Error == nil || resp.Error.Code != ErrNotesDirMissing {
		t.Fatalf("unexpected response: %s", out)
	}
}

func TestProgressCommands(t *testing.T) {
	v := testutil.NewTestVault(t).WithNote("falcon.md", plainNote).Build()
	useConfig(t, testConfig(v.Path))
	jsonOutput = true

	if _, err := runMigrate(t); err != nil {
		t.Fatalf("migrate error = %v", err)
	}

	out := captureStdout(t, func() {
		if err := progressStatusCmd.RunE(progressStatusCmd, nil); err != nil {
			t.Fatalf("status error = %v", err)
		}
	})
	var status struct {
		Passes []progress.Status `json:"passes"`
	}
	if err := json.Unmarshal(decodeResponse(t, out).Data, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if len(status.Passes) != 1 || status.Passes[0].Pass != batch.PassMigrate || status.Passes[0].DryRun != 1 {
		t.Fatalf("status = %+v", status.Passes)
	}

	out = captureStdout(t, func() {
		if err := progressClearCmd.RunE(progressClearCmd, []string{"dry-run"}); err != nil {
			t.Fatalf("clear error = %v", err)
		}
	})
	var cleared struct {
		Cleared map[string]int `json:"cleared"`
	}
	if err := json.Unmarshal(decodeResponse(t, out).Data, &cleared); err != nil {
		t.Fatalf("decode clear: %v", err)
	}
	if cleared.Cleared[batch.PassMigrate] != 1 {
		t.Fatalf("cleared = %+v", cleared.Cleared)
	}

	yesFlag = true
	out = captureStdout(t, func() {
		if err := progressResetCmd.RunE(progressResetCmd, nil); err != nil {
			t.Fatalf("reset error = %v", err)
		}
	})
	var reset struct {
		Backups map[string]string `json:"backups"`
	}
	if err := json.Unmarshal(decodeResponse(t, out).Data, &reset); err != nil {
		t.Fatalf("decode reset: %v", err)
	}
	backup := reset.Backups[batch.PassMigrate]
	if backup == "" {
		t.Fatalf("backups = %+v", reset.Backups)
	}
	if _, err := os.Stat(backup); err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if progress.Exists(progressOptions(batch.PassMigrate)) {
		t.Fatal("expected progress store to be moved aside")
	}
}

func TestProgressClearRejectsUnknownList(t *testing.T) {
	useConfig(t, testConfig(t.TempDir()))
	jsonOutput = true

	var err error
	out := captureStdout(t, func() {
		err = progressClearCmd.RunE(progressClearCmd, []string{"everything"})
	})
	if !errors.Is(err, errReported) {
		t.Fatalf("clear = %v, want errReported", err)
	}
	if resp := decodeResponse(t, out); resp.Error == nil || resp.Error.Code != ErrInvalidInput {
		t.Fatalf("unexpected response: %s", out)
	}
}

func TestSelectedPasses(t *testing.T) {
	useConfig(t, testConfig(t.TempDir()))

	progressPassFlag = "enrich"
	passes, err := selectedPasses()
	if err != nil || len(passes) != 1 || passes[0] != batch.PassEnrich {
		t.Fatalf("selectedPasses() = %v, %v", passes, err)
	}

	progressPassFlag = "bogus"
	if _, err := selectedPasses(); err == nil {
		t.Fatal("expected error for unknown pass")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	vaultDir := filepath.Join(dir, "vault")
	if err := os.Mkdir(vaultDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "conf", "config.toml")

	useConfig(t, nil)
	jsonOutput = true
	resolvedConfigPath = path
	configInitVault = vaultDir

	out := captureStdout(t, func() {
		if err := configInitCmd.RunE(configInitCmd, nil); err != nil {
			t.Fatalf("config init error = %v", err)
		}
	})
	if resp := decodeResponse(t, out); !resp.OK {
		t.Fatalf("unexpected response: %s", out)
	}

	loaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Vault != vaultDir {
		t.Fatalf("Vault = %q, want %q", loaded.Vault, vaultDir)
	}

	// A second init without --force refuses to overwrite.
	var initErr error
	out = captureStdout(t, func() { initErr = configInitCmd.RunE(configInitCmd, nil) })
	if !errors.Is(initErr, errReported) {
		t.Fatalf("second init = %v, want errReported", initErr)
	}
	if resp := decodeResponse(t, out); resp.Error == nil || resp.Error.Code != ErrFileExists {
		t.Fatalf("unexpected response: %s", out)
	}

	cfg = loaded
	jsonOutput = false
	out = captureStdout(t, func() {
		if err := configShowCmd.RunE(configShowCmd, nil); err != nil {
			t.Fatalf("config show error = %v", err)
		}
	})
	if !strings.Contains(out, `notes_dir = "Notes"`) {
		t.Fatalf("config show output:\n%s", out)
	}
}

func TestConfigPath(t *testing.T) {
	useConfig(t, nil)
	jsonOutput = true
	resolvedConfigPath = filepath.Join(t.TempDir(), "missing.toml")

	out := captureStdout(t, func() {
		if err := configPathCmd.RunE(configPathCmd, nil); err != nil {
			t.Fatalf("config path error = %v", err)
		}
	})
	var data struct {
		Path   string `json:"path"`
		Exists bool   `json:"exists"`
	}
	if err := json.Unmarshal(decodeResponse(t, out).Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Path != resolvedConfigPath || data.Exists {
		t.Fatalf("data = %+v", data)
	}
}

func TestChangesCommand(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithNote("falcon.md", plainNote).
		WithNote("osprey.md", plainNote).
		Build()
	useConfig(t, testConfig(v.Path))
	jsonOutput = true

	if _, err := runMigrate(t); err != nil {
		t.Fatalf("migrate error = %v", err)
	}

	readChanges := func() []changelog.Entry {
		t.Helper()
		out := captureStdout(t, func() {
			if err := changesCmd.RunE(changesCmd, nil); err != nil {
				t.Fatalf("changes error = %v", err)
			}
		})
		var data struct {
			Entries []changelog.Entry `json:"entries"`
		}
		if err := json.Unmarshal(decodeResponse(t, out).Data, &data); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return data.Entries
	}

	if got := len(readChanges()); got != 3 {
		t.Fatalf("entries = %d, want session plus two updates", got)
	}

	changesUpdatesOnly = true
	changesSinceFlag = "today"
	entries := readChanges()
	if len(entries) != 2 {
		t.Fatalf("updates = %d, want 2", len(entries))
	}
	if !entries[0].DryRun || entries[0].Pass != batch.PassMigrate {
		t.Fatalf("entry = %+v", entries[0])
	}
	if _, ok := entries[0].Changes["project"]; !ok {
		t.Fatalf("changes = %+v, want project", entries[0].Changes)
	}

	changesLimitFlag = 1
	if got := len(readChanges()); got != 1 {
		t.Fatalf("limited entries = %d, want 1", got)
	}

	changesPassFlag = batch.PassEnrich
	changesLimitFlag = 0
	if got := len(readChanges()); got != 0 {
		t.Fatalf("enrich entries = %d, want 0", got)
	}
}
