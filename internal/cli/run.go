package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/vaultfm/internal/batch"
	"github.com/aidanlsb/vaultfm/internal/changelog"
	"github.com/aidanlsb/vaultfm/internal/progress"
	"github.com/aidanlsb/vaultfm/internal/render"
	"github.com/aidanlsb/vaultfm/internal/ui"
)

// Output flags shared by migrate and enrich.
var (
	showDiff    bool
	showPreview bool
	showSkipped bool
)

func addOutputFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&showDiff, "diff", false, "Show a diff of each rewritten note")
	fs.BoolVar(&showPreview, "preview", false, "Show the rewritten frontmatter of each note")
	fs.BoolVar(&showSkipped, "show-skipped", false, "List notes that were skipped or unchanged")
}

func progressOptions(pass string) progress.Options {
	c := getConfig()
	return progress.Options{
		Backend: c.Progress.Backend,
		Dir:     c.StatePath(),
		Pass:    pass,
		Mode:    progress.ModeFor(c.IsDryRun()),
	}
}

// passLabel names a pass in prompts and summaries.
func passLabel(pass string) string {
	switch pass {
	case batch.PassMigrate:
		return "Migration"
	case batch.PassEnrich:
		return "Enrichment"
	}
	return pass
}

// runPass opens the pass's progress store, runs it, and reports the summary.
// configure fills in the pass-specific runner options.
func runPass(cmd *cobra.Command, pass string, configure func(*batch.Options), run func(*batch.Runner) (*batch.Summary, error)) error {
	c := getConfig()

	if err := confirmLive(passLabel(pass)); err != nil {
		return err
	}

	store, err := progress.Open(progressOptions(pass))
	if err != nil {
		return handleError(ErrProgressFailed, err, "Another "+pass+" run may be in progress")
	}
	defer store.Close()

	changes := changelog.New(c.StatePath(), pass, c.IsDryRun())
	var counter *ui.Progress
	opts := batch.Options{
		Config:  c,
		Tracker: store,
		Changes: changes,
		Logger:  logger,
		Diff:    showDiff,
		Preview: showPreview,
	}
	if !isJSONOutput() {
		opts.OnStart = func(total int) {
			counter = ui.NewProgress(os.Stderr, passLabel(pass), total)
		}
		opts.OnResult = func(res batch.Result) {
			counter.Increment(res.Path)
			if lines := resultLines(res); lines != "" {
				counter.Println(lines)
			}
		}
	}
	if configure != nil {
		configure(&opts)
	}

	runner, err := batch.New(opts)
	if err != nil {
		return handleError(ErrInternal, err, "")
	}

	started := time.Now()
	summary, err := run(runner)
	if counter != nil {
		counter.Done()
	}
	if err != nil {
		return handleError(ErrBatchFailed, err, "")
	}

	if isJSONOutput() {
		outputSuccessWithWarnings(summary, summaryWarnings(summary), &Meta{
			Count:      summary.Total,
			DurationMs: time.Since(started).Milliseconds(),
		})
		return nil
	}

	printSummary(summary, changes.Path())
	return nil
}

func summaryWarnings(s *batch.Summary) []Warning {
	var warnings []Warning
	for _, r := range s.Results {
		if r.Status == batch.StatusError {
			warnings = append(warnings, Warning{Code: WarnNoteFailed, Message: r.Reason, Note: r.Path})
		}
	}
	if s.Interrupted {
		warnings = append(warnings, Warning{Code: WarnInterrupted, Message: "batch interrupted; progress saved, re-run to resume"})
	}
	return warnings
}

func resultLines(res batch.Result) string {
	var b strings.Builder
	switch res.Status {
	case batch.StatusUpdated:
		b.WriteString(ui.Success(ui.FilePath(res.Path)))
		if res.Reason != "" {
			b.WriteString(" " + ui.Hint("("+res.Reason+")"))
		}
		for _, c := range res.Changes {
			fmt.Fprintf(&b, "\n    %s: %s → %s", c.Field, render.Value(c.Old), render.Value(c.New))
		}
		if res.Diff != "" {
			b.WriteString("\n")
			b.WriteString(strings.TrimSuffix(ui.ColorDiff(res.Diff), "\n"))
		}
		if res.Frontmatter != "" {
			if out, err := ui.RenderFrontmatter(res.Path, res.Frontmatter, ui.TermWidth()); err == nil {
				b.WriteString(strings.TrimSuffix(out, "\n"))
			} else {
				b.WriteString("\n" + strings.TrimSuffix(res.Frontmatter, "\n"))
			}
		}
	case batch.StatusError:
		b.WriteString(ui.Errorf("%s: %s", res.Path, res.Reason))
	case batch.StatusSkipped:
		if showSkipped && res.Reason != batch.SkipAlreadyProcessed {
			b.WriteString(ui.Skipped(res.Path, res.Reason))
		}
	case batch.StatusUnchanged:
		if showSkipped {
			b.WriteString(ui.Skipped(res.Path, "unchanged"))
		}
	}
	return b.String()
}

// maxListedErrors bounds the error list printed after an enrich run.
const maxListedErrors = 10

func printSummary(s *batch.Summary, changeLog string) {
	mode := "live"
	if s.DryRun {
		mode = "dry run"
	}
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s %s\n", ui.Header(passLabel(s.Pass)+" summary"), ui.Hint("("+mode+")"))

	tbl := ui.NewTable(2)
	tbl.AddRow("  total", fmt.Sprint(s.Total))
	tbl.AddRow("  processed", fmt.Sprint(s.Processed))
	tbl.AddRow("  updated", fmt.Sprint(s.Updated))
	tbl.AddRow("  skipped", fmt.Sprint(s.Skipped))
	tbl.AddRow("  errors", fmt.Sprint(s.Errors))
	fmt.Fprint(stdout, tbl.String())

	if s.Backup != "" {
		fmt.Fprintln(stdout, ui.Infof("Backup: %s", ui.FilePath(s.Backup)))
	}

	if failed := s.ErrorPaths(); len(failed) > 0 {
		fmt.Fprintln(stdout, ui.Warningf("%s failed:", ui.Notes(len(failed))))
		shown := failed
		if s.Pass == batch.PassEnrich && len(shown) > maxListedErrors {
			shown = shown[:maxListedErrors]
		}
		for _, p := range shown {
			fmt.Fprintf(stdout, "  %s\n", ui.FilePath(p))
		}
		if len(shown) < len(failed) {
			fmt.Fprintf(stdout, "  %s\n", ui.Hint(fmt.Sprintf("... and %d more", len(failed)-len(shown))))
		}
	}

	if s.Interrupted {
		fmt.Fprintln(stdout, ui.Warning("Interrupted. Progress was saved; run again to resume."))
	}
	if changeLog != "" {
		fmt.Fprintln(stdout, ui.Hint("Change log: "+changeLog))
	}
	if s.DryRun && s.Updated > 0 {
		fmt.Fprintln(stdout, ui.Hint("Dry run: nothing was written. Re-run with --live to apply."))
	}
}
