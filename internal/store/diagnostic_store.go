// This file handles database operations for scan diagnostics.

package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/vrsandeep/mango-catalog/internal/models"
)

// DiagnosticStore handles database operations for diagnostics.
type DiagnosticStore struct {
	db *sql.DB
}

// NewDiagnosticStore creates a new DiagnosticStore instance.
func NewDiagnosticStore(db *sql.DB) *DiagnosticStore {
	return &DiagnosticStore{db: db}
}

const upsertDiagnostic = `
	INSERT INTO diagnostics (path, file_name, kind, message, detected_at, last_checked)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		kind = excluded.kind,
		message = excluded.message,
		last_checked = excluded.last_checked
`

// RecordDiagnostic stores a diagnostic for its path. A path that already
// has a diagnostic keeps its original detection time.
func (s *DiagnosticStore) RecordDiagnostic(path string, kind models.DiagnosticKind, message string) error {
	now := time.Now()
	_, err := s.db.Exec(upsertDiagnostic, path, filepath.Base(path), string(kind), message, now, now)
	if err != nil {
		return fmt.Errorf("failed to record diagnostic: %w", err)
	}
	return nil
}

// SyncDiagnostics makes the table mirror the diagnostics of the latest
// scan: paths that no longer have a problem are removed.
func (s *DiagnosticStore) SyncDiagnostics(diags []models.Diagnostic) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	current := make(map[string]bool, len(diags))
	for _, d := range diags {
		current[d.Path] = true
		detected := d.DetectedAt
		if detected.IsZero() {
			detected = now
		}
		if _, err := tx.Exec(upsertDiagnostic, d.Path, filepath.Base(d.Path), string(d.Kind), d.Message, detected, now); err != nil {
			return fmt.Errorf("failed to record diagnostic %s: %w", d.Path, err)
		}
	}

	rows, err := tx.Query("SELECT path FROM diagnostics")
	if err != nil {
		return fmt.Errorf("failed to query diagnostics: %w", err)
	}
	var resolved []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan diagnostic path: %w", err)
		}
		if !current[path] {
			resolved = append(resolved, path)
		}
	}
	rows.Close()

	for _, path := range resolved {
		if _, err := tx.Exec("DELETE FROM diagnostics WHERE path = ?", path); err != nil {
			return fmt.Errorf("failed to delete diagnostic %s: %w", path, err)
		}
	}
	return tx.Commit()
}

// GetAllDiagnostics retrieves all diagnostics, most recent first.
func (s *DiagnosticStore) GetAllDiagnostics() ([]*models.Diagnostic, error) {
	query := `
		SELECT id, path, file_name, kind, message, detected_at, last_checked
		FROM diagnostics
		ORDER BY detected_at DESC, id DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}
	defer rows.Close()

	// Initialize with an empty slice to ensure it's never nil
	diags := make([]*models.Diagnostic, 0)
	for rows.Next() {
		d := &models.Diagnostic{}
		var kind string
		err := rows.Scan(&d.ID, &d.Path, &d.FileName, &kind, &d.Message, &d.DetectedAt, &d.LastChecked)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic row: %w", err)
		}
		d.Kind = models.DiagnosticKind(kind)
		diags = append(diags, d)
	}

	return diags, rows.Err()
}

// DeleteDiagnostic removes a diagnostic entry by ID.
func (s *DiagnosticStore) DeleteDiagnostic(id int64) error {
	if _, err := s.db.Exec("DELETE FROM diagnostics WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete diagnostic: %w", err)
	}
	return nil
}

// DeleteDiagnosticByPath removes a diagnostic entry by path.
func (s *DiagnosticStore) DeleteDiagnosticByPath(path string) error {
	if _, err := s.db.Exec("DELETE FROM diagnostics WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to delete diagnostic by path: %w", err)
	}
	return nil
}

// CountDiagnostics returns the total number of diagnostics.
func (s *DiagnosticStore) CountDiagnostics() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM diagnostics").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count diagnostics: %w", err)
	}
	return count, nil
}
