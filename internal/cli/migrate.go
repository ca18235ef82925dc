package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultfm/internal/batch"
	"github.com/aidanlsb/vaultfm/internal/dates"
)

var (
	migrateStampFlag string
	migrateDateFlag  string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Rewrite note frontmatter into the canonical schema",
	Long: `Rewrites the frontmatter of every note under notes_dir into the canonical,
commented schema. Existing fields matching the schema are kept, inline
"Project:: X" fields and short [[tag]] links in the first lines of the body
are absorbed and removed, and migration_date is stamped.

A live run copies the notes directory to backup_dir first. Progress is saved
every batch_size notes, so an interrupted run resumes where it stopped.

Examples:
  vaultfm migrate                      # dry run, summary only
  vaultfm migrate --diff               # dry run with a diff per note
  vaultfm migrate --date 2025-01-31    # stamp a fixed migration_date
  vaultfm migrate --live --yes         # write changes without prompting`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNeedsVault: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("stamp") {
			getConfig().Migrate.StampMigrationDate = migrateStampFlag
			if err := getConfig().Validate(); err != nil {
				return handleError(ErrInvalidInput, err, "Use --stamp always or --stamp first")
			}
		}
		var stampDate time.Time
		if migrateDateFlag != "" {
			d, err := dates.ParseDateArg(migrateDateFlag, time.Now())
			if err != nil {
				return handleError(ErrInvalidInput, err, "")
			}
			stampDate = d
		}
		configure := func(opts *batch.Options) {
			opts.StampDate = stampDate
		}
		return runPass(cmd, batch.PassMigrate, configure, func(r *batch.Runner) (*batch.Summary, error) {
			return r.Migrate(cmd.Context())
		})
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateStampFlag, "stamp", "", "migration_date policy: always or first")
	migrateCmd.Flags().StringVar(&migrateDateFlag, "date", "", "Date to stamp as migration_date (YYYY-MM-DD, today, yesterday)")
	addOutputFlags(migrateCmd.Flags())
	rootCmd.AddCommand(migrateCmd)
}
