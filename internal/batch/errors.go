package batch

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by per-note and batch failures.
const (
	CodeReadFailed   = "DOCUMENT_READ_FAILED"
	CodeWriteFailed  = "DOCUMENT_WRITE_FAILED"
	CodeStatFailed   = "DOCUMENT_STAT_FAILED"
	CodeNotesMissing = "NOTES_DIR_MISSING"
	CodeBackupFailed = "BACKUP_FAILED"
	CodeUnavailable  = "GENERATOR_UNAVAILABLE"
	CodeProgressSave = "PROGRESS_SAVE_FAILED"
)

func wrapError(err error, code, msg string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, msg+": "+err.Error()).WithTextCode(code)
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
