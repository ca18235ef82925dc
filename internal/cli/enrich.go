package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultfm/internal/batch"
	"github.com/aidanlsb/vaultfm/internal/ollama"
	"github.com/aidanlsb/vaultfm/internal/suggest"
	"github.com/aidanlsb/vaultfm/internal/ui"
)

var (
	enrichModelFlag   string
	enrichURLFlag     string
	enrichFolderFlags []string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill classification fields using a local Ollama model",
	Long: `Asks a local Ollama model to suggest values for classification fields of
notes that already have frontmatter, and merges the suggestions
conservatively: list fields gain new items, and other fields are only set
while empty (status only while "new").

Notes already enriched in the current mode are skipped. Notes for which the
model returned nothing are retried on the next run.

Examples:
  vaultfm enrich --folder Notes/Projects
  vaultfm enrich --model mistral --live --yes`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNeedsVault: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getConfig()
		if enrichModelFlag != "" {
			c.Enrich.Model = enrichModelFlag
		}
		if enrichURLFlag != "" {
			c.Enrich.URL = enrichURLFlag
		}
		if len(enrichFolderFlags) > 0 {
			c.Enrich.Folders = enrichFolderFlags
		}
		if err := c.Validate(); err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		client := ollama.New(ollama.Config{
			URL:     c.Enrich.URL,
			Model:   c.Enrich.Model,
			Timeout: c.RequestTimeout(),
			Options: ollama.Options{
				Temperature: c.Enrich.Temperature,
				NumPredict:  c.Enrich.NumPredict,
			},
		})
		analyzer := suggest.NewAnalyzer(client, suggest.Config{
			ContentLimit:  c.Enrich.ContentLimit,
			NormalizeTags: c.Enrich.NormalizeTags,
			Logger:        logger,
		})

		return runPass(cmd, batch.PassEnrich, func(o *batch.Options) {
			o.Suggester = analyzer
			o.Pinger = spinningPinger{client: client}
		}, func(r *batch.Runner) (*batch.Summary, error) {
			return r.Enrich(cmd.Context())
		})
	},
}

// spinningPinger shows a spinner while the connectivity check runs.
type spinningPinger struct {
	client *ollama.Client
}

func (p spinningPinger) Ping(ctx context.Context) error {
	if isJSONOutput() {
		return p.client.Ping(ctx)
	}
	s := ui.NewSpinner(os.Stderr, fmt.Sprintf("Connecting to %s (%s)", p.client.BaseURL(), p.client.Model()))
	s.Start()
	err := p.client.Ping(ctx)
	if err != nil {
		s.StopWithMessage(ui.Errorf("Cannot reach Ollama at %s", p.client.BaseURL()))
		return err
	}
	s.StopWithMessage(ui.Successf("Connected to Ollama, model %s", p.client.Model()))
	return nil
}

func init() {
	enrichCmd.Flags().StringVar(&enrichModelFlag, "model", "", "Ollama model (overrides enrich.model)")
	enrichCmd.Flags().StringVar(&enrichURLFlag, "url", "", "Ollama base URL (overrides enrich.url)")
	enrichCmd.Flags().StringSliceVar(&enrichFolderFlags, "folder", nil, "Vault-relative folder or glob to enrich (repeatable)")
	addOutputFlags(enrichCmd.Flags())
	rootCmd.AddCommand(enrichCmd)
}
