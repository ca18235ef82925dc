// Package batch drives the migrate and enrich passes over a vault: it lists
// notes, runs the pure pipeline on each, writes results, and keeps progress
// and the change log up to date.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aidanlsb/vaultfm/internal/changelog"
	"github.com/aidanlsb/vaultfm/internal/config"
	"github.com/aidanlsb/vaultfm/internal/logging"
	"github.com/aidanlsb/vaultfm/internal/progress"
	"github.com/aidanlsb/vaultfm/internal/record"
	"github.com/aidanlsb/vaultfm/internal/suggest"
)

// Pass names, also used to key progress stores.
const (
	PassMigrate = "migrate"
	PassEnrich  = "enrich"
)

// Result statuses.
const (
	StatusUpdated   = "updated"
	StatusUnchanged = "unchanged"
	StatusSkipped   = "skipped"
	StatusError     = "error"
)

// SkipAlreadyProcessed is the reason for notes the tracker has already seen.
const SkipAlreadyProcessed = "already processed"

// Suggester produces enrichment suggestions for a note.
type Suggester interface {
	Suggest(ctx context.Context, note suggest.Note) (record.Suggestions, error)
}

// Pinger checks that the text-generation service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Runner.
type Options struct {
	Config  *config.Config
	Tracker progress.Tracker
	Changes *changelog.Logger
	Logger  logging.Logger

	// Suggester and Pinger are only needed by Enrich.
	Suggester Suggester
	Pinger    Pinger

	// Diff attaches a unified diff of each rewrite to its result.
	Diff bool
	// Preview attaches the rendered frontmatter block of each rewrite.
	Preview bool

	// OnStart is called once the notes have been listed.
	OnStart func(total int)
	// OnResult is called after each note, for live progress output.
	OnResult func(Result)

	// StampDate, when set, is written as migration_date instead of today.
	StampDate time.Time

	Now func() time.Time
}

// Runner runs batch passes.
type Runner struct {
	cfg      *config.Config
	tracker  progress.Tracker
	changes  *changelog.Logger
	logger   logging.Logger
	suggest  Suggester
	pinger   Pinger
	diff     bool
	preview  bool
	onStart  func(int)
	onResult func(Result)
	stamp    time.Time
	now      func() time.Time
}

// New creates a Runner. Config and Tracker are required.
func New(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("batch: config is required")
	}
	if opts.Tracker == nil {
		return nil, fmt.Errorf("batch: progress tracker is required")
	}
	changes := opts.Changes
	if changes == nil {
		changes = changelog.New("", "", false)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		cfg:      opts.Config,
		tracker:  opts.Tracker,
		changes:  changes,
		logger:   logging.OrNoOp(opts.Logger),
		suggest:  opts.Suggester,
		pinger:   opts.Pinger,
		diff:     opts.Diff,
		preview:  opts.Preview,
		onStart:  opts.OnStart,
		onResult: opts.OnResult,
		stamp:    opts.StampDate,
		now:      now,
	}, nil
}

// Result is the outcome for one note.
type Result struct {
	Path    string          `json:"path"`
	Status  string          `json:"status"`
	Reason  string          `json:"reason,omitempty"`
	Changes []record.Change `json:"changes,omitempty"`
	Diff    string          `json:"diff,omitempty"`
	// Frontmatter is the rewritten block, set when previews are requested.
	Frontmatter string `json:"frontmatter,omitempty"`
	Err         error  `json:"-"`
}

// Summary is the outcome of a pass.
type Summary struct {
	Pass   string `json:"pass"`
	DryRun bool   `json:"dry_run"`
	// Total is the number of notes selected.
	Total int `json:"total"`
	// Processed counts notes that went through the pipeline, written or not.
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
	// Backup is the directory the notes were copied to before a live migrate.
	Backup string `json:"backup,omitempty"`
	// Interrupted is set when the context was cancelled mid-batch.
	Interrupted bool     `json:"interrupted,omitempty"`
	Results     []Result `json:"results"`

	saved int
}

// ErrorPaths lists the notes that failed, in processing order.
func (s *Summary) ErrorPaths() []string {
	var out []string
	for _, r := range s.Results {
		if r.Status == StatusError {
			out = append(out, r.Path)
		}
	}
	return out
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusUpdated:
		s.Processed++
		s.Updated++
	case StatusUnchanged:
		s.Processed++
	case StatusSkipped:
		s.Skipped++
	case StatusError:
		s.Errors++
	}
}

func (r *Runner) start(s *Summary) {
	if r.onStart != nil {
		r.onStart(s.Total)
	}
}

func (r *Runner) record(s *Summary, res Result) {
	s.add(res)
	if r.onResult != nil {
		r.onResult(res)
	}
}

// checkpoint saves progress every batch_size processed notes.
func (r *Runner) checkpoint(s *Summary) error {
	size := r.cfg.Progress.BatchSize
	if size <= 0 {
		size = config.DefaultBatchSize
	}
	if s.Processed-s.saved >= size {
		s.saved = s.Processed
		if err := r.tracker.Save(); err != nil {
			return wrapError(err, CodeProgressSave, "save progress")
		}
	}
	return nil
}

func (r *Runner) finish(s *Summary) error {
	if err := r.tracker.Save(); err != nil {
		return wrapError(err, CodeProgressSave, "save progress")
	}
	r.logger.Info("batch finished",
		"pass", s.Pass,
		"dry_run", s.DryRun,
		"total", s.Total,
		"processed", s.Processed,
		"updated", s.Updated,
		"skipped", s.Skipped,
		"errors", s.Errors,
		"interrupted", s.Interrupted,
	)
	return nil
}

func (r *Runner) fail(rel string, err error) Result {
	r.tracker.MarkError(rel, err)
	if logErr := r.changes.LogError(rel, err); logErr != nil {
		r.logger.Warn("could not write change log", "error", logErr)
	}
	r.logger.Error("note failed", "note", rel, "error", err)
	return Result{Path: rel, Status: StatusError, Reason: err.Error(), Err: err}
}

func (r *Runner) logSkip(rel, reason string) {
	if err := r.changes.LogSkip(rel, reason); err != nil {
		r.logger.Warn("could not write change log", "error", err)
	}
}

func (r *Runner) skipDirs() []string {
	return []string{filepath.Base(filepath.FromSlash(r.cfg.BackupDir))}
}
