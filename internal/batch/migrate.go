package batch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/aidanlsb/vaultfm/internal/atomicfile"
	"github.com/aidanlsb/vaultfm/internal/diff"
	"github.com/aidanlsb/vaultfm/internal/pipeline"
	"github.com/aidanlsb/vaultfm/internal/record"
	"github.com/aidanlsb/vaultfm/internal/render"
	"github.com/aidanlsb/vaultfm/internal/schema"
	"github.com/aidanlsb/vaultfm/internal/vault"
)

// Migrate runs the base pass over every note under notes_dir. A live run
// first copies the notes directory to backup_dir. Per-note failures are
// recorded and the batch continues; cancelling ctx stops between notes.
func (r *Runner) Migrate(ctx context.Context) (*Summary, error) {
	cfg := r.cfg
	summary := &Summary{Pass: PassMigrate, DryRun: cfg.IsDryRun()}

	stamp, err := record.ParseStampPolicy(cfg.Migrate.StampMigrationDate)
	if err != nil {
		return nil, err
	}

	files, err := vault.ListMarkdownFiles(cfg.Vault, vault.Filter{
		Dir:      cfg.NotesDir,
		SkipDirs: r.skipDirs(),
	})
	if err != nil {
		return nil, wrapError(err, CodeNotesMissing, "list notes")
	}
	summary.Total = len(files)
	r.logger.Info("migrating notes", "notes", cfg.NotesPath(), "count", len(files), "dry_run", summary.DryRun)

	if !summary.DryRun && len(files) > 0 {
		backup, err := vault.Backup(cfg.Vault, cfg.NotesPath(), cfg.BackupDir, r.now())
		if err != nil {
			return nil, wrapError(err, CodeBackupFailed, "back up notes")
		}
		summary.Backup = backup
		r.logger.Info("backed up notes", "backup", backup)
	}

	if err := r.changes.LogSession(); err != nil {
		r.logger.Warn("could not write change log", "error", err)
	}
	r.start(summary)

	now := r.now()
	if !r.stamp.IsZero() {
		now = r.stamp
	}
	for _, f := range files {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		if r.tracker.AlreadyDone(f.RelPath) {
			r.record(summary, Result{Path: f.RelPath, Status: StatusSkipped, Reason: SkipAlreadyProcessed})
			continue
		}

		r.record(summary, r.migrateFile(f, now, stamp, summary.DryRun))
		if err := r.checkpoint(summary); err != nil {
			return summary, err
		}
	}

	return summary, r.finish(summary)
}

func (r *Runner) migrateFile(f vault.File, now time.Time, stamp record.StampPolicy, dryRun bool) Result {
	info, err := statFile(f.Path)
	if err != nil {
		return r.fail(f.RelPath, wrapError(err, CodeStatFailed, "stat "+f.RelPath))
	}
	created, modified := vault.FileTimes(info)

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return r.fail(f.RelPath, wrapError(err, CodeReadFailed, "read "+f.RelPath))
	}
	content := string(data)

	res := pipeline.Migrate(pipeline.MigrateInput{
		Content:  content,
		Created:  created,
		Modified: modified,
		Now:      now,
		Stamp:    stamp,
		Logger:   r.logger,
	})

	if !res.Changed {
		r.tracker.MarkDone(f.RelPath)
		r.logSkip(f.RelPath, "unchanged")
		return Result{Path: f.RelPath, Status: StatusUnchanged}
	}

	if !dryRun {
		if err := atomicfile.WriteString(f.Path, res.Content); err != nil {
			return r.fail(f.RelPath, wrapError(err, CodeWriteFailed, "write "+f.RelPath))
		}
	}
	r.tracker.MarkDone(f.RelPath)

	changes := absorbed(res)
	if err := r.changes.LogChanges(f.RelPath, changes); err != nil {
		r.logger.Warn("could not write change log", "error", err)
	}
	r.logger.Debug("migrated note", "note", f.RelPath, "had_frontmatter", res.HadFrontmatter, "inline_fields", len(res.Inline.Keys), "tags", len(res.Inline.Tags))

	out := Result{Path: f.RelPath, Status: StatusUpdated, Changes: changes}
	if res.DecodeFailed {
		out.Reason = "existing frontmatter could not be decoded"
	}
	if r.diff {
		out.Diff = diff.Unified(content, res.Content, diff.DefaultContext)
	}
	if r.preview {
		out.Frontmatter = render.Frontmatter(res.Record, render.Options{Comments: true})
	}
	return out
}

// absorbed lists the fields the base pass filled from inline annotations.
func absorbed(res pipeline.MigrateResult) []record.Change {
	if res.Inline.Empty() {
		return nil
	}

	var changes []record.Change
	add := func(name string) {
		if v, ok := res.Record.Get(name); ok && !record.IsEmpty(v) {
			changes = append(changes, record.Change{Field: name, New: v})
		}
	}
	if _, ok := res.Inline.Fields[schema.FieldProject]; ok {
		add(schema.FieldProject)
	}
	if len(res.Inline.Tags) > 0 {
		add(schema.FieldTags)
	}
	add(schema.FieldNotes)
	return changes
}

func statFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: errors.New("not a regular file")}
	}
	return info, nil
}
