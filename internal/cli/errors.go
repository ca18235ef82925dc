package cli

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/aidanlsb/vaultfm/internal/ollama"
	"github.com/aidanlsb/vaultfm/internal/progress"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Vault errors
	ErrVaultNotFound     = "VAULT_NOT_FOUND"
	ErrVaultNotSpecified = "VAULT_NOT_SPECIFIED"
	ErrConfigInvalid     = "CONFIG_INVALID"
	ErrNotesDirMissing   = "NOTES_DIR_MISSING"

	// Batch errors
	ErrBackupFailed         = "BACKUP_FAILED"
	ErrGeneratorUnavailable = "GENERATOR_UNAVAILABLE"
	ErrBatchFailed          = "BATCH_FAILED"

	// Progress errors
	ErrProgressLocked   = "PROGRESS_LOCKED"
	ErrProgressNotFound = "PROGRESS_NOT_FOUND"
	ErrProgressFailed   = "PROGRESS_FAILED"

	// File errors
	ErrFileExists     = "FILE_EXISTS"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// Input errors
	ErrInvalidInput         = "INVALID_INPUT"
	ErrConfirmationRequired = "CONFIRMATION_REQUIRED"
	ErrAborted              = "ABORTED"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnNoteFailed  = "NOTE_FAILED"
	WarnInterrupted = "INTERRUPTED"
)

// errorCode returns the text code carried by err, or fallback.
func errorCode(err error, fallback string) string {
	var coded *goerrors.Error
	if errors.As(err, &coded) && coded.TextCode != "" {
		return coded.TextCode
	}
	switch {
	case errors.Is(err, progress.ErrLocked):
		return ErrProgressLocked
	case errors.Is(err, progress.ErrNoProgress):
		return ErrProgressNotFound
	case errors.Is(err, ollama.ErrUnavailable):
		return ErrGeneratorUnavailable
	}
	return fallback
}
