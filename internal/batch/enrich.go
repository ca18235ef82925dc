package batch

import (
	"context"
	"fmt"
	"os"

	"github.com/aidanlsb/vaultfm/internal/atomicfile"
	"github.com/aidanlsb/vaultfm/internal/diff"
	"github.com/aidanlsb/vaultfm/internal/paths"
	"github.com/aidanlsb/vaultfm/internal/pipeline"
	"github.com/aidanlsb/vaultfm/internal/render"
	"github.com/aidanlsb/vaultfm/internal/suggest"
	"github.com/aidanlsb/vaultfm/internal/vault"
)

// Enrich runs the enrichment pass over the configured folders, or every note
// under notes_dir when none are set. The text-generation service is pinged
// before any note is read.
func (r *Runner) Enrich(ctx context.Context) (*Summary, error) {
	if r.suggest == nil {
		return nil, fmt.Errorf("batch: enrich needs a suggester")
	}
	cfg := r.cfg
	summary := &Summary{Pass: PassEnrich, DryRun: cfg.IsDryRun()}

	if r.pinger != nil {
		if err := r.pinger.Ping(ctx); err != nil {
			return nil, wrapError(err, CodeUnavailable, "text generation service unavailable")
		}
	}

	filter := vault.Filter{
		Dir:      cfg.NotesDir,
		Exclude:  cfg.Enrich.Exclude,
		SkipDirs: r.skipDirs(),
	}
	if len(cfg.Enrich.Folders) > 0 {
		filter.Dir = ""
		filter.Include = cfg.Enrich.Folders
	}
	files, err := vault.ListMarkdownFiles(cfg.Vault, filter)
	if err != nil {
		return nil, wrapError(err, CodeNotesMissing, "list notes")
	}
	summary.Total = len(files)
	r.logger.Info("enriching notes", "count", len(files), "dry_run", summary.DryRun)

	if err := r.changes.LogSession(); err != nil {
		r.logger.Warn("could not write change log", "error", err)
	}
	r.start(summary)

	for _, f := range files {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		if r.tracker.AlreadyDone(f.RelPath) {
			r.record(summary, Result{Path: f.RelPath, Status: StatusSkipped, Reason: SkipAlreadyProcessed})
			continue
		}

		res := r.enrichFile(ctx, f, summary.DryRun)
		if res.Status == StatusSkipped && res.Reason == pipeline.SkipNoSuggestions && ctx.Err() != nil {
			summary.Interrupted = true
			break
		}
		r.record(summary, res)
		if err := r.checkpoint(summary); err != nil {
			return summary, err
		}
	}

	return summary, r.finish(summary)
}

func (r *Runner) enrichFile(ctx context.Context, f vault.File, dryRun bool) Result {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return r.fail(f.RelPath, wrapError(err, CodeReadFailed, "read "+f.RelPath))
	}
	content := string(data)

	fields, body, ok := pipeline.Existing(content, r.logger)
	if !ok {
		r.logSkip(f.RelPath, pipeline.SkipNoFrontmatter)
		return Result{Path: f.RelPath, Status: StatusSkipped, Reason: pipeline.SkipNoFrontmatter}
	}

	suggestions, err := r.suggest.Suggest(ctx, suggest.Note{
		Title:    paths.Title(f.RelPath),
		Body:     body,
		Existing: fields,
	})
	if err != nil {
		if !isCanceled(err) {
			r.logger.Warn("no suggestions", "note", f.RelPath, "error", err)
		}
		suggestions = nil
	}

	res := pipeline.Enrich(pipeline.EnrichInput{
		Content:     content,
		Suggestions: suggestions,
		Logger:      r.logger,
	})
	if res.Skipped {
		// Notes without suggestions are retried on the next run.
		if res.SkipReason == pipeline.SkipNoChanges {
			r.tracker.MarkDone(f.RelPath)
		}
		r.logSkip(f.RelPath, res.SkipReason)
		return Result{Path: f.RelPath, Status: StatusSkipped, Reason: res.SkipReason}
	}

	if !dryRun {
		if err := atomicfile.WriteString(f.Path, res.Content); err != nil {
			return r.fail(f.RelPath, wrapError(err, CodeWriteFailed, "write "+f.RelPath))
		}
	}
	r.tracker.MarkDone(f.RelPath)

	if err := r.changes.LogChanges(f.RelPath, res.Changes); err != nil {
		r.logger.Warn("could not write change log", "error", err)
	}
	for _, c := range res.Changes {
		r.logger.Info(fmt.Sprintf("%s: %s → %s", c.Field, render.Value(c.Old), render.Value(c.New)), "note", f.RelPath)
	}

	out := Result{Path: f.RelPath, Status: StatusUpdated, Changes: res.Changes}
	if r.diff {
		out.Diff = diff.Unified(content, res.Content, diff.DefaultContext)
	}
	if r.preview {
		out.Frontmatter = render.Frontmatter(res.Record, render.Options{})
	}
	return out
}
