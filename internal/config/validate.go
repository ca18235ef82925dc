package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"

	"github.com/aidanlsb/vaultfm/internal/logging"
	"github.com/aidanlsb/vaultfm/internal/progress"
	"github.com/aidanlsb/vaultfm/internal/record"
	"github.com/aidanlsb/vaultfm/internal/vault"
)

// CodeInvalid is the text code carried by validation errors.
const CodeInvalid = "CONFIG_INVALID"

// Validate checks the config after flag overrides have been applied.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Vault, validation.Required),
		validation.Field(&c.NotesDir, validation.Required, validation.By(insideVault)),
		validation.Field(&c.BackupDir, validation.Required, validation.By(insideVault)),
		validation.Field(&c.Migrate),
		validation.Field(&c.Enrich),
		validation.Field(&c.Progress),
		validation.Field(&c.Log),
	)
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, fmt.Sprintf("invalid configuration: %v", err)).
		WithTextCode(CodeInvalid)
}

// Validate implements validation.Validatable.
func (m MigrateConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.StampMigrationDate, validation.By(func(value any) error {
			_, err := record.ParseStampPolicy(value.(string))
			return err
		})),
	)
}

// Validate implements validation.Validatable.
func (e EnrichConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Folders, validation.Each(validation.By(globPattern))),
		validation.Field(&e.Exclude, validation.Each(validation.By(globPattern))),
		validation.Field(&e.URL, validation.Required, is.RequestURL),
		validation.Field(&e.Model, validation.Required),
		validation.Field(&e.Timeout, validation.By(duration)),
		validation.Field(&e.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&e.NumPredict, validation.Min(0)),
		validation.Field(&e.ContentLimit, validation.Min(0)),
	)
}

// Validate implements validation.Validatable.
func (p ProgressConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Backend, validation.By(func(value any) error {
			if !progress.ValidBackend(value.(string)) {
				return fmt.Errorf("%w %q", progress.ErrUnknownBackend, value)
			}
			return nil
		})),
		validation.Field(&p.BatchSize, validation.Required, validation.Min(1)),
	)
}

// Validate implements validation.Validatable.
func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.By(func(value any) error {
			if !logging.ValidLevel(value.(string)) {
				return errors.New("must be one of debug, info, warn, error")
			}
			return nil
		})),
		validation.Field(&l.Format, validation.In("", "console", "json", "pretty")),
	)
}

func insideVault(value any) error {
	p, _ := value.(string)
	if filepath.IsAbs(p) {
		return errors.New("must be relative to the vault")
	}
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return errors.New("must stay inside the vault")
	}
	return nil
}

func globPattern(value any) error {
	p, _ := value.(string)
	if strings.TrimSpace(p) == "" {
		return errors.New("must not be empty")
	}
	if !vault.ValidatePattern(p) {
		return fmt.Errorf("invalid pattern %q", p)
	}
	return nil
}

func duration(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return errors.New("must be a duration such as 60s or 2m")
	}
	if d <= 0 {
		return errors.New("must be positive")
	}
	return nil
}
