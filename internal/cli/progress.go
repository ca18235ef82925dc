package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultfm/internal/batch"
	"github.com/aidanlsb/vaultfm/internal/progress"
	"github.com/aidanlsb/vaultfm/internal/ui"
)

var progressPassFlag string

var progressCmd = &cobra.Command{
	Use:         "progress",
	Short:       "Inspect or reset saved batch progress",
	Annotations: map[string]string{annotationNeedsVault: "true"},
}

var progressStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show saved progress for each pass",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		passes, err := selectedPasses()
		if err != nil {
			return err
		}

		var statuses []progress.Status
		for _, pass := range passes {
			opts := progressOptions(pass)
			if !progress.Exists(opts) {
				continue
			}
			store, err := progress.OpenReadOnly(opts)
			if err != nil {
				return handleError(ErrProgressFailed, err, "")
			}
			statuses = append(statuses, store.Status())
			_ = store.Close()
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"passes": statuses}, &Meta{Count: len(statuses)})
			return nil
		}

		if len(statuses) == 0 {
			fmt.Fprintln(stdout, ui.Info("No progress recorded yet."))
			return nil
		}
		for i, st := range statuses {
			if i > 0 {
				fmt.Fprintln(stdout)
			}
			printStatus(st)
		}
		return nil
	},
}

var progressClearCmd = &cobra.Command{
	Use:   "clear <dry-run|live|errors>",
	Short: "Empty one progress list so those notes are processed again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := progress.ParseClearTarget(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		passes, err := selectedPasses()
		if err != nil {
			return err
		}

		cleared := map[string]int{}
		for _, pass := range passes {
			opts := progressOptions(pass)
			opts.Mode = ""
			if !progress.Exists(opts) {
				continue
			}
			store, err := progress.Open(opts)
			if err != nil {
				return handleError(ErrProgressFailed, err, "")
			}
			n := store.Clear(target)
			saveErr := store.Save()
			_ = store.Close()
			if saveErr != nil {
				return handleError(ErrProgressFailed, saveErr, "")
			}
			cleared[pass] = n
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"target": target, "cleared": cleared}, nil)
			return nil
		}
		if len(cleared) == 0 {
			fmt.Fprintln(stdout, ui.Info("No progress recorded yet."))
			return nil
		}
		for _, pass := range passes {
			if n, ok := cleared[pass]; ok {
				fmt.Fprintln(stdout, ui.Successf("%s: cleared %s from %s", pass, ui.Count(n, "entry", "entries"), target))
			}
		}
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Move saved progress aside so the next run starts fresh",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		passes, err := selectedPasses()
		if err != nil {
			return err
		}
		if err := confirmAction("Reset saved progress?"); err != nil {
			return err
		}

		backups := map[string]string{}
		for _, pass := range passes {
			backup, err := progress.Reset(progressOptions(pass))
			if err != nil {
				if errorCode(err, "") == ErrProgressNotFound {
					continue
				}
				return handleError(ErrProgressFailed, err, "")
			}
			backups[pass] = backup
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"backups": backups}, &Meta{Count: len(backups)})
			return nil
		}
		if len(backups) == 0 {
			fmt.Fprintln(stdout, ui.Info("No progress recorded yet."))
			return nil
		}
		for _, pass := range passes {
			if b, ok := backups[pass]; ok {
				fmt.Fprintln(stdout, ui.Successf("%s: progress moved to %s", pass, ui.FilePath(b)))
			}
		}
		return nil
	},
}

func selectedPasses() ([]string, error) {
	switch progressPassFlag {
	case "", "all":
		return []string{batch.PassMigrate, batch.PassEnrich}, nil
	case batch.PassMigrate, batch.PassEnrich:
		return []string{progressPassFlag}, nil
	}
	return nil, handleErrorMsg(ErrInvalidInput,
		fmt.Sprintf("unknown pass %q", progressPassFlag), "Use --pass migrate, enrich or all")
}

func printStatus(st progress.Status) {
	fmt.Fprintln(stdout, ui.Header(passLabel(st.Pass)))

	tbl := ui.NewTable(2)
	tbl.AddRow("  store", ui.FilePath(st.Path))
	tbl.AddRow("  mode", string(st.CurrentMode))
	tbl.AddRow("  started", formatTime(st.StartedAt))
	tbl.AddRow("  updated", formatTime(st.LastUpdated))
	if st.LastProcessed != "" {
		tbl.AddRow("  last note", st.LastProcessed)
	}
	tbl.AddRow("  dry run", fmt.Sprint(st.DryRun))
	tbl.AddRow("  live", fmt.Sprint(st.Live))
	tbl.AddRow("  errors", fmt.Sprint(len(st.Errors)))
	fmt.Fprint(stdout, tbl.String())

	for _, e := range st.Errors {
		fmt.Fprintf(stdout, "    %s %s\n", ui.Errorf("%s:", e.Path), ui.Hint(e.Message))
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func init() {
	progressCmd.PersistentFlags().StringVar(&progressPassFlag, "pass", "all", "Pass to act on: migrate, enrich or all")
	progressCmd.AddCommand(progressStatusCmd)
	progressCmd.AddCommand(progressClearCmd)
	progressCmd.AddCommand(progressResetCmd)
	rootCmd.AddCommand(progressCmd)
}
