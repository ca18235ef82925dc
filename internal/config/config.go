// Package config handles vaultfm configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultNotesDir     = "Notes"
	DefaultBackupDir    = "Notes_Backup_Before_Frontmatter"
	DefaultStateDirName = ".vaultfm"
	DefaultBatchSize    = 10
	DefaultOllamaURL    = "http://localhost:11434"
	DefaultModel        = "llama2"
	DefaultTimeout      = "60s"
	DefaultTemperature  = 0.3
	DefaultNumPredict   = 500
	DefaultContentLimit = 2000
)

// Config represents the vaultfm configuration.
type Config struct {
	// Vault is the root of the note collection.
	Vault string `toml:"vault" json:"vault"`

	// NotesDir is the vault-relative directory holding the notes.
	NotesDir string `toml:"notes_dir" json:"notes_dir"`

	// BackupDir is the vault-relative directory the notes are copied to
	// before a live migration.
	BackupDir string `toml:"backup_dir" json:"backup_dir"`

	// StateDir holds progress stores and the change log. Relative paths are
	// resolved against the vault; empty means <vault>/.vaultfm.
	StateDir string `toml:"state_dir" json:"state_dir"`

	// DryRun defaults to true. Nil is treated as true.
	DryRun *bool `toml:"dry_run" json:"dry_run"`

	Migrate  MigrateConfig  `toml:"migrate" json:"migrate"`
	Enrich   EnrichConfig   `toml:"enrich" json:"enrich"`
	Progress ProgressConfig `toml:"progress" json:"progress"`
	Log      LogConfig      `toml:"log" json:"log"`
}

// MigrateConfig configures the base pass.
type MigrateConfig struct {
	// StampMigrationDate is "always" or "first".
	StampMigrationDate string `toml:"stamp_migration_date" json:"stamp_migration_date"`
}

// EnrichConfig configures the enrichment pass and its Ollama client.
type EnrichConfig struct {
	// Folders are vault-relative doublestar patterns. Empty selects every note.
	Folders []string `toml:"folders" json:"folders"`
	Exclude []string `toml:"exclude" json:"exclude"`

	URL         string  `toml:"url" json:"url"`
	Model       string  `toml:"model" json:"model"`
	Timeout     string  `toml:"timeout" json:"timeout"`
	Temperature float64 `toml:"temperature" json:"temperature"`
	NumPredict  int     `toml:"num_predict" json:"num_predict"`

	// ContentLimit bounds the number of body characters sent in a prompt.
	ContentLimit int `toml:"content_limit" json:"content_limit"`

	// NormalizeTags slugifies suggested tags and topics.
	NormalizeTags bool `toml:"normalize_tags" json:"normalize_tags"`
}

// ProgressConfig configures the resumable progress store.
type ProgressConfig struct {
	// Backend is "file" (YAML) or "sqlite".
	Backend   string `toml:"backend" json:"backend"`
	BatchSize int    `toml:"batch_size" json:"batch_size"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

// Default returns a config populated with every default.
func Default() *Config {
	dryRun := true
	return &Config{
		NotesDir:  DefaultNotesDir,
		BackupDir: DefaultBackupDir,
		DryRun:    &dryRun,
		Migrate:   MigrateConfig{StampMigrationDate: "always"},
		Enrich: EnrichConfig{
			URL:          DefaultOllamaURL,
			Model:        DefaultModel,
			Timeout:      DefaultTimeout,
			Temperature:  DefaultTemperature,
			NumPredict:   DefaultNumPredict,
			ContentLimit: DefaultContentLimit,
		},
		Progress: ProgressConfig{Backend: "file", BatchSize: DefaultBatchSize},
		Log:      LogConfig{Level: "info", Format: "console"},
	}
}

// IsDryRun reports whether writes are disabled.
func (c *Config) IsDryRun() bool {
	return c.DryRun == nil || *c.DryRun
}

// SetDryRun overrides the dry-run setting.
func (c *Config) SetDryRun(v bool) {
	c.DryRun = &v
}

// NotesPath returns the absolute notes directory.
func (c *Config) NotesPath() string {
	return filepath.Join(c.Vault, filepath.FromSlash(c.NotesDir))
}

// StatePath returns the directory holding progress stores and the change log.
func (c *Config) StatePath() string {
	switch {
	case c.StateDir == "":
		return filepath.Join(c.Vault, DefaultStateDirName)
	case filepath.IsAbs(c.StateDir):
		return filepath.Clean(c.StateDir)
	default:
		return filepath.Join(c.Vault, filepath.FromSlash(c.StateDir))
	}
}

// RequestTimeout returns the parsed Ollama request timeout.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Enrich.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

// Load loads the configuration from the default location.
// Returns the defaults if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path. Values in the file
// overlay the defaults.
func LoadFrom(path string) (*Config, error) {
	config := Default()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/vaultfm/config.toml first (XDG style),
// then falls back to the OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "vaultfm", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "vaultfm", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// CreateDefault writes a commented default config file to path if it doesn't
// exist. It reports whether a file was created.
func CreateDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}

const defaultConfig = `# vaultfm configuration

# Root of the note collection
# vault = "/path/to/vault"

# Notes live under <vault>/<notes_dir>
notes_dir = "Notes"

# Copy of the notes taken before a live migration. An existing directory
# gets a timestamped sibling instead.
backup_dir = "Notes_Backup_Before_Frontmatter"

# Progress stores and changes.log (default <vault>/.vaultfm)
# state_dir = ""

# Nothing is written unless dry_run is false or --live is given
dry_run = true

[migrate]
# always - restamp migration_date on every run
# first  - keep an existing migration_date
stamp_migration_date = "always"

[enrich]
# Vault-relative globs; empty means every note
# folders = ["Notes/Projects/**"]
# exclude = ["**/templates/**"]
url = "http://localhost:11434"
model = "llama2"
timeout = "60s"
temperature = 0.3
num_predict = 500
content_limit = 2000
normalize_tags = false

[progress]
# file or sqlite
backend = "file"
batch_size = 10

[log]
# debug, info, warn, error
level = "info"
# console, json, pretty
format = "console"
`
