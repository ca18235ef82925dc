package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultfm/internal/config"
	"github.com/aidanlsb/vaultfm/internal/ui"
)

var (
	configInitVault string
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the vaultfm config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default settings",
	Long: `Writes a config file to --config, or to the default location.

Without --vault the commented default template is written. With --vault the
defaults are saved with the given vault path filled in.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := getConfigPath()

		if _, err := os.Stat(path); err == nil && !configInitForce {
			return handleErrorMsg(ErrFileExists, fmt.Sprintf("config already exists: %s", path),
				"Use --force to overwrite it")
		}

		if configInitVault == "" && !configInitForce {
			created, err := config.CreateDefault(path)
			if err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
			return reportConfigInit(path, created)
		}

		c := config.Default()
		if configInitVault != "" {
			abs, err := filepath.Abs(configInitVault)
			if err != nil {
				return handleError(ErrInvalidInput, err, "")
			}
			c.Vault = abs
		}
		if err := config.SaveTo(path, c); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		return reportConfigInit(path, true)
	},
}

func reportConfigInit(path string, created bool) error {
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"path": path, "created": created}, nil)
		return nil
	}
	if !created {
		fmt.Fprintln(stdout, ui.Infof("Config already exists: %s", ui.FilePath(path)))
		return nil
	}
	fmt.Fprintln(stdout, ui.Successf("Wrote %s", ui.FilePath(path)))
	return nil
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  "Prints the loaded config with defaults and flag overrides applied.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getConfig()
		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"path": getConfigPath(), "config": c}, nil)
			return nil
		}

		out, err := config.Encode(c)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		fmt.Fprintln(stdout, ui.Hint("# "+getConfigPath()))
		fmt.Fprint(stdout, out)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file location",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := getConfigPath()
		_, statErr := os.Stat(path)
		exists := statErr == nil

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"path": path, "exists": exists}, nil)
			return nil
		}
		fmt.Fprintln(stdout, path)
		if !exists {
			fmt.Fprintln(stdout, ui.Hint("(not created yet, run 'vaultfm config init')"))
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitVault, "vault", "", "Vault path to store in the new config")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
