// This file turns scan failures into diagnostics.

package library

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/vrsandeep/mango-catalog/internal/models"
)

func newDiagnostic(path string, kind models.DiagnosticKind, message string) models.Diagnostic {
	now := time.Now()
	d := models.Diagnostic{
		Path:        path,
		FileName:    filepath.Base(path),
		Kind:        kind,
		Message:     message,
		DetectedAt:  now,
		LastChecked: now,
	}
	log.Printf("Scan diagnostic [%s] %s: %s", kind, path, message)
	return d
}

// containerDiagnostic describes an archive that could not be enumerated.
func containerDiagnostic(path string, err error) models.Diagnostic {
	if errors.Is(err, ErrEntryCap) {
		return newDiagnostic(path, models.DiagEntryCapReached, err.Error())
	}
	return newDiagnostic(path, models.DiagContainerOpen, string(categorizeError(err))+": "+err.Error())
}

// categorizeError categorizes archive errors into user-friendly categories
func categorizeError(err error) models.ContainerFailure {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.FailureTimeout
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return models.FailureIOError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not a valid zip file"),
		strings.Contains(msg, "unexpected eof"),
		strings.Contains(msg, "checksum"),
		strings.Contains(msg, "corrupt"):
		return models.FailureCorruptedArchive
	case strings.Contains(msg, "password"), strings.Contains(msg, "encrypt"):
		return models.FailurePasswordProtected
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "failed to open"):
		return models.FailureIOError
	}
	// Default to invalid format for unknown errors
	return models.FailureInvalidFormat
}
