package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultfm/internal/changelog"
	"github.com/aidanlsb/vaultfm/internal/dates"
	"github.com/aidanlsb/vaultfm/internal/render"
	"github.com/aidanlsb/vaultfm/internal/ui"
)

var (
	changesSinceFlag   string
	changesPassFlag    string
	changesLimitFlag   int
	changesUpdatesOnly bool
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Show what previous runs changed",
	Long: `Reads the change log in the state directory. Each run appends a session
marker followed by one entry per updated, skipped or failed note.

Examples:
  vaultfm changes --since today
  vaultfm changes --pass enrich --updates-only --limit 20`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNeedsVault: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		log := changelog.New(getConfig().StatePath(), "", false)

		var (
			entries []changelog.Entry
			err     error
		)
		if changesSinceFlag != "" {
			since, perr := dates.ParseDateArg(changesSinceFlag, time.Now())
			if perr != nil {
				return handleError(ErrInvalidInput, perr, "")
			}
			y, m, d := since.Date()
			entries, err = log.ReadSince(time.Date(y, m, d, 0, 0, 0, 0, since.Location()))
		} else {
			entries, err = log.Read()
		}
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		entries = filterEntries(entries, changesPassFlag, changesUpdatesOnly)
		if changesLimitFlag > 0 && len(entries) > changesLimitFlag {
			entries = entries[len(entries)-changesLimitFlag:]
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"path":    log.Path(),
				"entries": entries,
			}, &Meta{Count: len(entries)})
			return nil
		}

		if len(entries) == 0 {
			fmt.Fprintln(stdout, ui.Info("No changes recorded."))
			return nil
		}
		for _, e := range entries {
			printEntry(e)
		}
		return nil
	},
}

func filterEntries(entries []changelog.Entry, pass string, updatesOnly bool) []changelog.Entry {
	var out []changelog.Entry
	for _, e := range entries {
		if pass != "" && e.Pass != pass {
			continue
		}
		if updatesOnly && e.Operation != changelog.OpUpdate {
			continue
		}
		out = append(out, e)
	}
	return out
}

func printEntry(e changelog.Entry) {
	ts := ui.Hint(e.Timestamp.Local().Format("2006-01-02 15:04"))
	mode := ""
	if e.DryRun {
		mode = " " + ui.Hint("(dry run)")
	}

	switch e.Operation {
	case changelog.OpSession:
		fmt.Fprintf(stdout, "%s %s%s\n", ts, ui.Header(passLabel(e.Pass)+" run"), mode)
	case changelog.OpUpdate:
		fmt.Fprintf(stdout, "%s %s%s\n", ts, ui.Success(ui.FilePath(e.Note)), mode)
		fields := make([]string, 0, len(e.Changes))
		for f := range e.Changes {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			c := e.Changes[f]
			fmt.Fprintf(stdout, "    %s: %s → %s\n", f, render.Value(c.Old), render.Value(c.New))
		}
	case changelog.OpSkip:
		fmt.Fprintf(stdout, "%s %s\n", ts, ui.Skipped(e.Note, e.Reason))
	case changelog.OpError:
		fmt.Fprintf(stdout, "%s %s\n", ts, ui.Errorf("%s: %s", e.Note, e.Reason))
	}
}

func init() {
	changesCmd.Flags().StringVar(&changesSinceFlag, "since", "", "Only entries from this day on (YYYY-MM-DD, today, yesterday)")
	changesCmd.Flags().StringVar(&changesPassFlag, "pass", "", "Only entries from this pass: migrate or enrich")
	changesCmd.Flags().IntVar(&changesLimitFlag, "limit", 0, "Show at most this many of the latest entries")
	changesCmd.Flags().BoolVar(&changesUpdatesOnly, "updates-only", false, "Only show updated notes")
	rootCmd.AddCommand(changesCmd)
}
