// Package cli implements the command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultfm/internal/config"
	"github.com/aidanlsb/vaultfm/internal/logging"
	"github.com/aidanlsb/vaultfm/internal/ui"
)

var (
	// Global flags
	configPath    string
	vaultPathFlag string
	dryRunFlag    bool
	liveFlag      bool
	yesFlag       bool
	logLevelFlag  string

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
	logger             logging.Logger = logging.NoOp()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vaultfm",
	Short: "vaultfm - normalize and enrich note frontmatter",
	Long: `vaultfm rewrites the frontmatter of every markdown note in a vault into a
fixed, commented schema, absorbing inline "Key:: Value" fields and short
[[tag]] links, then optionally enriches classification fields using a local
Ollama model.

Runs are dry by default. Pass --live to write changes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		if cmd.Annotations[annotationSkipConfig] == "true" {
			resolvedConfigPath = configPath
			if strings.TrimSpace(resolvedConfigPath) == "" {
				resolvedConfigPath = config.DefaultPath()
			}
			return nil
		}

		if err := loadConfig(cmd); err != nil {
			return handleError(ErrConfigInvalid, err, "Check the config file or run 'vaultfm config init'")
		}

		if commandNeedsVault(cmd) {
			if err := resolveVault(); err != nil {
				return err
			}
		}

		return setupLogger()
	},
}

// Execute runs the CLI. SIGINT cancels the running batch between notes.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&vaultPathFlag, "vault-path", "", "Path to the vault (overrides vault in config)")
	rootCmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", false, "Preview changes without writing (default unless config says otherwise)")
	rootCmd.PersistentFlags().BoolVar(&liveFlag, "live", false, "Write changes to notes")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "Skip the confirmation prompt for live runs")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.MarkFlagsMutuallyExclusive("dry-run", "live")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}

// getConfigPath returns the resolved config path.
func getConfigPath() string {
	return resolvedConfigPath
}

func loadConfig(cmd *cobra.Command) error {
	resolvedConfigPath = configPath
	if strings.TrimSpace(resolvedConfigPath) == "" {
		resolvedConfigPath = config.DefaultPath()
	}

	var err error
	if strings.TrimSpace(configPath) != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	applyFlagOverrides(cmd, cfg)
	return nil
}

// applyFlagOverrides layers global flags over the loaded config.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	if vaultPathFlag != "" {
		c.Vault = vaultPathFlag
	}
	if liveFlag {
		c.SetDryRun(false)
	}
	if dryRunFlag {
		c.SetDryRun(true)
	}
	if cmd.Flags().Changed("log-level") {
		c.Log.Level = logLevelFlag
	}
}

func commandNeedsVault(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationNeedsVault] == "true" {
			return true
		}
	}
	return false
}

const (
	annotationNeedsVault = "needs_vault"
	// annotationSkipConfig marks commands that must run even when the
	// config file is missing or broken.
	annotationSkipConfig = "skip_config"
)

func resolveVault() error {
	if strings.TrimSpace(cfg.Vault) == "" {
		return handleErrorMsg(ErrVaultNotSpecified, "no vault specified",
			"Use --vault-path /path/to/vault or set vault in "+getConfigPath())
	}
	info, err := os.Stat(cfg.Vault)
	if err != nil || !info.IsDir() {
		return handleErrorMsg(ErrVaultNotFound, fmt.Sprintf("vault not found: %s", cfg.Vault), "")
	}
	if err := cfg.Validate(); err != nil {
		return handleError(ErrConfigInvalid, err, "Fix the config file at "+getConfigPath())
	}
	return nil
}

func setupLogger() error {
	if isJSONOutput() {
		logger = logging.NoOp()
		return nil
	}
	l, err := logging.New("vaultfm", logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}
	logger = l
	return nil
}
